package machine

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/vitalvas/tacacsd/internal/attrs"
	"github.com/vitalvas/tacacsd/internal/statusmap"
)

// Phase is one step of the fixed INIT → RECV → PROCESS → SEND → DONE
// progression of spec.md §4.3.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseRecv
	PhaseProcess
	PhaseSend
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "INIT"
	case PhaseRecv:
		return "RECV"
	case PhaseProcess:
		return "PROCESS"
	case PhaseSend:
		return "SEND"
	case PhaseDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// MasterState is the cooperative-cancellation flag of spec.md §5.
type MasterState int

const (
	Running MasterState = iota
	StopProcessing
)

// DecodeResult mirrors the wire codec's decode return convention from
// spec.md §6: ok, a clean client abort, or any other decode failure.
type DecodeResult int

const (
	DecodeOK DecodeResult = iota
	DecodeClientAbort
	DecodeError
)

// ConnID identifies the connection a Request arrived on, for state_add.
// It resolves spec.md §9 Open Question 1: rather than a listener pointer
// (assumed stable for the connection's lifetime, which a Go net.Conn is
// not guaranteed to be by address), every accepted connection is assigned
// a uuid.UUID once, for its lifetime.
type ConnID uuid.UUID

// NewConnID generates a fresh connection identity.
func NewConnID() ConnID {
	return ConnID(uuid.New())
}

// Request is the processing unit of spec.md §3: one inbound packet plus
// everything the SessionMachine accumulates while driving it to a reply.
type Request struct {
	Conn      ConnID
	Kind      statusmap.PacketKind
	SeqNo     uint8
	SessionID uint32

	// Inbound carries the attributes decoded from the wire packet; Reply
	// accumulates the outbound ones. Control holds policy-set attributes
	// such as AuthType, scoped to this Request only (never persisted).
	Inbound attrs.List
	Reply   attrs.List
	Control attrs.List

	Phase       Phase
	MasterState MasterState
	Decode      DecodeResult

	// Arena owns the session-state attributes restored from, and destined
	// for, the StateStore (spec.md §3 I4/I6). Nil until INIT populates it
	// for AUTHEN requests.
	Arena *attrs.Arena

	// section and defaultOutcome are set by whichever phase schedules the
	// next policy section to run, and consumed by the following phase's
	// call into the Evaluator.
	section        string
	defaultOutcome statusmap.Outcome

	// authAlias is the resolved AuthType alias driving process/send section
	// selection, set during RECV's AuthType resolution.
	authAlias string
}

// StateKey computes the deterministic 16-byte per-connection, per-session
// lookup key of spec.md §4.3 "state_add": the first 12 bytes identify the
// connection, the last 4 hold the session ID in native byte order, so that
// two connections colliding on session_id never collide on key.
//
// Grounded on original_source/src/modules/proto_tacacs/proto_tacacs.c's
// state_add(), which packs sizeof(listener pointer) bytes followed by the
// session_id; ConnID takes the pointer's place here.
func StateKey(conn ConnID, sessionID uint32) [16]byte {
	var key [16]byte
	copy(key[:12], conn[:12])
	binary.NativeEndian.PutUint32(key[12:], sessionID)
	return key
}
