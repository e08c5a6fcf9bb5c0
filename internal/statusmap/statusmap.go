// Package statusmap implements the StatusMapper of spec.md §4.2: a pure
// function from a packet kind and a policy outcome to a reply attribute
// write. It holds no state and calls nothing; everything it needs is the
// (PacketKind, Outcome) pair and a logger for the unlisted-outcome warning.
package statusmap

import "go.uber.org/zap"

// PacketKind names which TACACS+ packet family a Request belongs to.
type PacketKind int

const (
	Authentication PacketKind = iota
	Authorization
	Accounting
)

// String renders the kind the way policy section names spell it
// ("recv Authentication", "send Accounting", ...).
func (k PacketKind) String() string {
	switch k {
	case Authentication:
		return "Authentication"
	case Authorization:
		return "Authorization"
	case Accounting:
		return "Accounting"
	default:
		return "Unknown"
	}
}

// Outcome is the generic result a policy interpreter reports after running
// a section, independent of which packet kind it ran for.
type Outcome int

const (
	OK Outcome = iota
	Fail
	Reject
	UserLock
	Invalid
	Handled
	Noop
	NotFound
	Updated
)

// statusAttr is the attribute name each packet kind's terminal status is
// written to, matching the dictionary names spec.md §6 enumerates.
var statusAttr = map[PacketKind]string{
	Authentication: "TACACS-Authentication-Status",
	Authorization:  "TACACS-Authorization-Status",
	Accounting:     "TACACS-Accounting-Status",
}

// table is the complete mapping of spec.md §4.2. A kind/outcome pair
// missing from it produces a logged warning and no write.
var table = map[PacketKind]map[Outcome]string{
	Authentication: {
		OK:       "Pass",
		Fail:     "Fail",
		Reject:   "Fail",
		UserLock: "Fail",
		Invalid:  "Error",
		// Handled is deliberately absent: policy already set the status.
	},
	Authorization: {
		OK:       "Pass-Repl",
		Fail:     "Fail",
		Reject:   "Fail",
		UserLock: "Fail",
		Invalid:  "Error",
	},
	Accounting: {
		OK:       "Success",
		Fail:     "Error",
		Reject:   "Error",
		UserLock: "Error",
		Invalid:  "Error",
	},
}

// Attributes abstracts the reply attribute list enough for Apply to write to
// it without depending on any concrete packet type.
type Attributes interface {
	Replace(name string, value any)
}

// Apply writes the reply status corresponding to kind/outcome into reply,
// per the table in spec.md §4.2. AUTHEN's HANDLED outcome is a deliberate
// no-op: policy has already written the status and the mapper must not
// clobber it. Any other outcome absent from the table is logged at Warn
// and otherwise ignored — spec.md §9 leaves whether that's intended policy
// or a latent bug unresolved, and this rewrite preserves the behavior
// either way.
func Apply(log *zap.Logger, reply Attributes, kind PacketKind, outcome Outcome) {
	if kind == Authentication && outcome == Handled {
		return
	}

	value, ok := table[kind][outcome]
	if !ok {
		log.Warn("statusmap: unmapped outcome, reply left unchanged",
			zap.String("packet_kind", kind.String()),
			zap.Int("outcome", int(outcome)),
		)
		return
	}

	reply.Replace(statusAttr[kind], value)
}
