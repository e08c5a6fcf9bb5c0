// Package corestate implements the StateStore of spec.md §4.1: a
// thread-safe, time-bounded associative store keyed by an opaque 16-byte
// token that carries policy-accumulated attributes across the successive
// packets of one multi-round TACACS+ authentication.
//
// It is a direct Go rendering of FreeRADIUS's fr_state_tree_t
// (original_source/src/main/state.c): an ordered map keyed by token,
// doubly-linked into a FIFO whose order equals cleanup order because every
// entry shares the same lifetime (insertion time + timeout).
package corestate
