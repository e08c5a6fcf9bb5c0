// Package reader implements the ConnectionReader of spec.md §4.4: a
// per-connection incremental packet assembler sitting on top of the wire
// codec (the gotacacs root package), producing machine.Request values ready
// for the SessionMachine.
package reader
