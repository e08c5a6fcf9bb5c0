package policy

import (
	"context"
	"fmt"
	"sync"

	"github.com/vitalvas/tacacsd/internal/machine"
	"github.com/vitalvas/tacacsd/internal/statusmap"
)

// outcomeNames maps the string outcome names used in configuration files
// and HTTP delegate responses onto statusmap.Outcome values.
var outcomeNames = map[string]statusmap.Outcome{
	"OK":       statusmap.OK,
	"FAIL":     statusmap.Fail,
	"REJECT":   statusmap.Reject,
	"USERLOCK": statusmap.UserLock,
	"INVALID":  statusmap.Invalid,
	"HANDLED":  statusmap.Handled,
	"NOOP":     statusmap.Noop,
	"NOTFOUND": statusmap.NotFound,
	"UPDATED":  statusmap.Updated,
}

// ParseOutcome resolves the string outcome names used in virtual-server
// configuration and HTTP delegate responses onto a statusmap.Outcome.
func ParseOutcome(name string) (statusmap.Outcome, bool) {
	o, ok := outcomeNames[name]
	return o, ok
}

// Rule is one line of a compiled Section: an ordered set of attribute
// matches, evaluated like the RADIUS proof-of-concept's rule table
// (sequential, first match wins, "*" as a wildcard value).
type Rule struct {
	// Match pairs an inbound attribute name with the value it must equal;
	// a value of "*" matches anything (including absence of the attribute).
	Match map[string]string
	// SetControl is copied onto req.Control when this rule matches, the
	// way recv policy sets AuthType in the source material.
	SetControl map[string]any
	Outcome    statusmap.Outcome
}

func (r Rule) matches(req *machine.Request) bool {
	for name, want := range r.Match {
		if want == "*" {
			continue
		}
		got, ok := req.Inbound.GetString(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Section is one compiled virtual-server block (spec.md §6 "recv
// Authentication", "process PAP", ...).
type Section struct {
	Name    string
	Rules   []Rule
	Default statusmap.Outcome
}

// Registry is the local, in-process Evaluator: sections compiled once at
// startup, rules matched sequentially, no network calls.
type Registry struct {
	mu       sync.RWMutex
	sections map[string]*Section
}

// NewRegistry returns an empty Registry; call Compile to load sections.
func NewRegistry() *Registry {
	return &Registry{sections: map[string]*Section{}}
}

// Compile replaces the registry's section set atomically. A duplicate
// section name aborts compilation (spec.md §6 "compilation failure aborts
// startup with a diagnostic identifying the offending section").
func (r *Registry) Compile(sections []Section) error {
	m := make(map[string]*Section, len(sections))
	for i := range sections {
		s := sections[i]
		if _, dup := m[s.Name]; dup {
			return fmt.Errorf("policy: duplicate section %q", s.Name)
		}
		m[s.Name] = &s
	}

	r.mu.Lock()
	r.sections = m
	r.mu.Unlock()
	return nil
}

// Resolve implements machine.Evaluator.
func (r *Registry) Resolve(prefix, qualifier string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name := prefix + " " + qualifier
	if _, ok := r.sections[name]; ok {
		return name, true
	}
	fallback := prefix + " *"
	if _, ok := r.sections[fallback]; ok {
		return fallback, true
	}
	return "", false
}

// Fallback implements machine.Evaluator.
func (r *Registry) Fallback(prefix string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name := prefix + " *"
	_, ok := r.sections[name]
	return name, ok
}

// Run implements machine.Evaluator: it never yields, since matching a rule
// table is never I/O-bound.
func (r *Registry) Run(ctx context.Context, section string, req *machine.Request, def statusmap.Outcome) (machine.RunResult, error) {
	r.mu.RLock()
	s, ok := r.sections[section]
	r.mu.RUnlock()
	if !ok {
		return machine.RunResult{Outcome: def}, nil
	}

	for _, rule := range s.Rules {
		if rule.matches(req) {
			for name, val := range rule.SetControl {
				req.Control.Add(name, val)
			}
			return machine.RunResult{Outcome: rule.Outcome}, nil
		}
	}
	return machine.RunResult{Outcome: s.Default}, nil
}
