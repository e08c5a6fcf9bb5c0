package corestate

import (
	"time"

	"github.com/vitalvas/tacacsd/internal/attrs"
)

// Entry is one outstanding multi-round conversation's state, per spec.md
// §3 StateEntry. CleanupAt is fixed at creation time (insertion time plus
// the store's configured timeout) and never extended, so the FIFO order of
// entries is always also their cleanup order (I2).
type Entry struct {
	ID        uint64
	Token     Token
	CleanupAt time.Time
	Tries     uint8
	Arena     *attrs.Arena

	prev, next *Entry
}

// Expired reports whether the entry's lifetime has elapsed as of now.
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.CleanupAt)
}
