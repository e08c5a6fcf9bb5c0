// Package policy implements the policy interpreter surface spec.md §6
// describes as an external collaborator: compiled recv/process/send
// sections, and the machine.Evaluator contract the SessionMachine drives.
//
// Two Evaluator implementations are provided: Registry, an in-process rule
// table (grounded on the RADIUS proof-of-concept's policy evaluator), and
// HTTPDelegate, which calls out to an external policy service guarded by a
// circuit breaker (grounded on the same proof-of-concept's gateway client).
package policy
