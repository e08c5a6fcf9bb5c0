// Package machine implements the SessionMachine of spec.md §4.3: the
// INIT → RECV → PROCESS → SEND → DONE phase progression that drives one
// Request through policy, consulting the StateStore at the AUTHEN
// boundaries and translating policy outcomes into reply status codes via
// statusmap.
//
// It is the Go rendering of FreeRADIUS's tacacs_running() state machine
// (original_source/src/modules/proto_tacacs/proto_tacacs.c). Where that
// function returns control to an event loop on every interpreter yield,
// Machine.Run runs in whatever goroutine its caller dedicates to the
// connection: the Evaluator may still report Yielded (e.g. because it is
// itself waiting on something, such as the HTTP policy delegate), in which
// case Run returns immediately and the caller is responsible for invoking
// it again later — phase is preserved on the Request either way.
package machine
