package machine

import (
	"context"

	"github.com/vitalvas/tacacsd/internal/statusmap"
)

// RunResult is what driving one policy section against a Request produces.
type RunResult struct {
	Outcome statusmap.Outcome
	// Yielded reports a cooperative suspension (spec.md §5): the caller
	// should return control to its scheduler and invoke Run again later
	// for the same section/Request to resume, rather than treating this as
	// a terminal outcome.
	Yielded bool
}

// Evaluator is the policy interpreter contract the SessionMachine drives
// (spec.md §6 "Policy surface"). Section names are resolved before each
// phase transition and passed back into Run.
type Evaluator interface {
	// Resolve returns the compiled section for "<prefix> <qualifier>",
	// falling back to "<prefix> *" if the exact name was never compiled.
	// ok is false if neither exists.
	Resolve(prefix, qualifier string) (section string, ok bool)

	// Fallback returns the compiled "<prefix> *" section only, without
	// attempting any qualified name first.
	Fallback(prefix string) (section string, ok bool)

	// Run executes section against req, returning its outcome or a yield.
	// defaultOutcome is what the section reports if it runs to completion
	// without explicitly setting one.
	Run(ctx context.Context, section string, req *Request, defaultOutcome statusmap.Outcome) (RunResult, error)
}

// Transport hands a finished reply to the wire codec for obfuscation,
// framing, and send (spec.md §6 "encode_and_send"), out of scope for the
// core itself.
type Transport interface {
	Send(ctx context.Context, req *Request) error
}
