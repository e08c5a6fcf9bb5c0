package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/vitalvas/tacacsd/internal/machine"
	"github.com/vitalvas/tacacsd/internal/statusmap"
)

type evaluateRequest struct {
	Section    string         `json:"section"`
	Attributes map[string]any `json:"attributes"`
}

type evaluateResponse struct {
	Outcome string         `json:"outcome"`
	Control map[string]any `json:"control"`
}

// HTTPDelegate is an Evaluator that calls out to an external policy
// service for Run, while section names are still resolved locally against
// sections compiled at startup (the names, not their logic, must exist
// before the daemon will route a request to them at all).
//
// Grounded on the RADIUS proof-of-concept's Vector Gateway client: a
// resty.Client call wrapped in a gobreaker.CircuitBreaker so a flapping
// backend degrades to fast REJECTs instead of blocking every worker
// waiting on a dead service.
type HTTPDelegate struct {
	sections *Registry
	client   *resty.Client
	breaker  *gobreaker.CircuitBreaker
}

// NewHTTPDelegate builds an HTTPDelegate posting evaluation requests to
// baseURL + "/evaluate". sections supplies Resolve/Fallback name matching;
// its Rules are ignored by Run.
func NewHTTPDelegate(baseURL string, sections *Registry) *HTTPDelegate {
	return &HTTPDelegate{
		sections: sections,
		client:   resty.New().SetBaseURL(baseURL).SetTimeout(2 * time.Second),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "policy-http-delegate",
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
		}),
	}
}

// Resolve implements machine.Evaluator.
func (d *HTTPDelegate) Resolve(prefix, qualifier string) (string, bool) {
	return d.sections.Resolve(prefix, qualifier)
}

// Fallback implements machine.Evaluator.
func (d *HTTPDelegate) Fallback(prefix string) (string, bool) {
	return d.sections.Fallback(prefix)
}

// Run implements machine.Evaluator. A broken circuit or a transport/decode
// failure reports Outcome: Reject rather than propagating an error, so a
// dead policy backend fails a conversation instead of wedging its worker.
func (d *HTTPDelegate) Run(ctx context.Context, section string, req *machine.Request, def statusmap.Outcome) (machine.RunResult, error) {
	body := evaluateRequest{Section: section, Attributes: make(map[string]any, len(req.Inbound))}
	for _, p := range req.Inbound {
		body.Attributes[p.Name] = p.Value
	}

	result, err := d.breaker.Execute(func() (any, error) {
		var out evaluateResponse
		resp, err := d.client.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&out).
			Post("/evaluate")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("policy: delegate returned %s", resp.Status())
		}
		return out, nil
	})
	if err != nil {
		return machine.RunResult{Outcome: statusmap.Reject}, nil
	}

	out := result.(evaluateResponse)
	for name, val := range out.Control {
		req.Control.Add(name, val)
	}

	outcome, ok := ParseOutcome(out.Outcome)
	if !ok {
		outcome = def
	}
	return machine.RunResult{Outcome: outcome}, nil
}

var _ machine.Evaluator = (*Registry)(nil)
var _ machine.Evaluator = (*HTTPDelegate)(nil)
