package machine

import (
	"context"

	"go.uber.org/zap"

	"github.com/vitalvas/tacacsd/internal/attrs"
	"github.com/vitalvas/tacacsd/internal/statusmap"
)

// StateStore is the subset of corestate.Store the SessionMachine consults,
// narrowed to an interface so tests can substitute a fake.
type StateStore interface {
	ToRequest(pkt *attrs.List) *attrs.Arena
	Discard(pkt *attrs.List)
	FromRequest(arena *attrs.Arena, original, pkt *attrs.List) bool
}

// terminalAuthenStatus is the set of AuthenticationStatus values that end a
// conversation outright (spec.md §4.3 SEND), as opposed to the ones that
// invite a further round (GetData, GetUser, GetPass, ...).
var terminalAuthenStatus = map[string]bool{
	"Pass":    true,
	"Fail":    true,
	"RESTART": true,
	"Error":   true,
	"FOLLOW":  true,
}

// Machine drives Requests through spec.md §4.3's INIT/RECV/PROCESS/SEND/DONE
// progression.
type Machine struct {
	store     StateStore
	policy    Evaluator
	transport Transport
	log       *zap.Logger
}

// New builds a Machine. log defaults to zap.NewNop() if nil.
func New(store StateStore, policy Evaluator, transport Transport, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{store: store, policy: policy, transport: transport, log: log}
}

// Run drives req from its current phase to DONE, or until the Evaluator
// reports a yield, in which case Run returns nil immediately and the
// caller is expected to invoke Run again later to resume (phase and all
// accumulated state are preserved on req).
func (m *Machine) Run(ctx context.Context, req *Request) error {
	for {
		if req.MasterState == StopProcessing && req.Phase != PhaseDone {
			if req.Kind == statusmap.Authentication {
				m.store.Discard(&req.Inbound)
			}
			req.Phase = PhaseDone
		}

		switch req.Phase {
		case PhaseInit:
			m.stepInit(req)

		case PhaseRecv:
			yielded, err := m.stepRecv(ctx, req)
			if err != nil || yielded {
				return err
			}

		case PhaseProcess:
			yielded, err := m.stepProcess(ctx, req)
			if err != nil || yielded {
				return err
			}

		case PhaseSend:
			yielded, err := m.stepSend(ctx, req)
			if err != nil || yielded {
				return err
			}

		case PhaseDone:
			return nil

		default:
			req.Phase = PhaseDone
		}
	}
}

func (m *Machine) stepInit(req *Request) {
	switch req.Decode {
	case DecodeClientAbort:
		req.Phase = PhaseDone
		return
	case DecodeError:
		statusmap.Apply(m.log, &req.Reply, req.Kind, statusmap.Invalid)
		req.Phase = PhaseSend
		return
	}

	section, ok := m.policy.Resolve("recv", req.Kind.String())
	if !ok {
		req.Phase = PhaseSend
		return
	}

	if req.Kind == statusmap.Authentication {
		key := StateKey(req.Conn, req.SessionID)
		req.Inbound.Replace(attrs.State, key[:])

		arena := m.store.ToRequest(&req.Inbound)
		if arena == nil {
			arena = &attrs.Arena{}
		}
		req.Arena = arena
	}

	req.section = section
	req.defaultOutcome = statusmap.Reject
	req.Phase = PhaseRecv
}

func (m *Machine) stepRecv(ctx context.Context, req *Request) (yielded bool, err error) {
	result, err := m.policy.Run(ctx, req.section, req, req.defaultOutcome)
	if err != nil {
		return false, err
	}
	if result.Yielded {
		return true, nil
	}

	switch result.Outcome {
	case statusmap.OK, statusmap.Noop, statusmap.NotFound, statusmap.Updated:
		m.resolveAuthType(req)
	case statusmap.Handled:
		req.Phase = PhaseSend
	default:
		statusmap.Apply(m.log, &req.Reply, req.Kind, result.Outcome)
		req.Phase = PhaseSend
	}
	return false, nil
}

// resolveAuthType implements spec.md §4.3's "AuthType resolution": pick the
// first AuthType the control list carries, warn about extras, and either
// short-circuit on the Accept/Reject sentinels or resolve a process section
// for it.
func (m *Machine) resolveAuthType(req *Request) {
	types := req.Control.All(attrs.AuthType)

	if len(types) == 0 {
		statusmap.Apply(m.log, &req.Reply, req.Kind, statusmap.Reject)
		req.Phase = PhaseSend
		return
	}
	for _, extra := range types[1:] {
		m.log.Warn("machine: extra AuthType attribute ignored",
			zap.Any("value", extra.Value))
	}

	switch types[0].Value {
	case attrs.AuthTypeAccept:
		statusmap.Apply(m.log, &req.Reply, req.Kind, statusmap.OK)
		req.Phase = PhaseSend
		return
	case attrs.AuthTypeReject:
		statusmap.Apply(m.log, &req.Reply, req.Kind, statusmap.Reject)
		req.Phase = PhaseSend
		return
	}

	alias, ok := types[0].Value.(string)
	if !ok || alias == "" {
		statusmap.Apply(m.log, &req.Reply, req.Kind, statusmap.Fail)
		req.Phase = PhaseSend
		return
	}

	section, ok := m.policy.Resolve("process", alias)
	if !ok {
		statusmap.Apply(m.log, &req.Reply, req.Kind, statusmap.Fail)
		req.Phase = PhaseSend
		return
	}

	req.authAlias = alias
	req.section = section
	req.defaultOutcome = statusmap.NotFound
	req.Phase = PhaseProcess
}

func (m *Machine) stepProcess(ctx context.Context, req *Request) (yielded bool, err error) {
	result, err := m.policy.Run(ctx, req.section, req, req.defaultOutcome)
	if err != nil {
		return false, err
	}
	if result.Yielded {
		return true, nil
	}

	switch result.Outcome {
	case statusmap.OK:
		statusmap.Apply(m.log, &req.Reply, req.Kind, statusmap.OK)
	case statusmap.Handled:
		// status already set by policy.
	default:
		statusmap.Apply(m.log, &req.Reply, req.Kind, statusmap.Fail)
	}
	req.Phase = PhaseSend
	return false, nil
}

func (m *Machine) stepSend(ctx context.Context, req *Request) (yielded bool, err error) {
	var section string
	var ok bool
	if req.authAlias != "" {
		section, ok = m.policy.Resolve("send", req.Kind.String())
	} else {
		section, ok = m.policy.Fallback("send")
	}

	if ok {
		result, err := m.policy.Run(ctx, section, req, statusmap.Noop)
		if err != nil {
			return false, err
		}
		if result.Yielded {
			return true, nil
		}
	}

	if req.Kind == statusmap.Authentication {
		if abort := m.finalizeAuthen(req); abort {
			req.Phase = PhaseDone
			return false, nil
		}
	}

	if err := m.transport.Send(ctx, req); err != nil {
		return false, err
	}
	req.Phase = PhaseDone
	return false, nil
}

// finalizeAuthen implements the AUTHEN-specific tail of SEND: deciding
// whether the conversation ended, handling the sequence-253 restart
// boundary, and persisting continuing conversations back to the
// StateStore. It reports abort=true when spec.md §4.3 calls for skipping
// straight to DONE without a reply send (a missing SequenceNumber).
func (m *Machine) finalizeAuthen(req *Request) (abort bool) {
	status, ok := req.Reply.GetString(attrs.AuthenticationStatus)
	if !ok {
		m.store.Discard(&req.Inbound)
		return false
	}
	if terminalAuthenStatus[status] {
		m.store.Discard(&req.Inbound)
		return false
	}

	seqPair, ok := req.Inbound.Get(attrs.SequenceNumber)
	if !ok {
		return true
	}
	seq, ok := seqPair.Value.(uint8)
	if !ok {
		return true
	}

	if seq == 253 {
		m.store.Discard(&req.Inbound)
		req.Reply = attrs.List{}
		req.Reply.Replace(attrs.AuthenticationStatus, "RESTART")
		return false
	}

	key := StateKey(req.Conn, req.SessionID)
	req.Reply.Replace(attrs.State, key[:])
	m.store.FromRequest(req.Arena, &req.Inbound, &req.Reply)
	// A false return from FromRequest (capacity exhausted) is not treated
	// as an error here: spec.md §7 has the next client turn arrive
	// unmatched and rejected normally by policy, nothing to do now.
	return false
}
