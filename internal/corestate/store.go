package corestate

import (
	"sync"
	"time"

	"github.com/vitalvas/tacacsd/internal/attrs"
)

// Option configures a Store at construction time.
type Option func(*Store)

// WithServerVersion sets the value mixed into bytes 8/10/12 of every
// derived token, distinguishing tokens minted by different server builds.
func WithServerVersion(v uint32) Option {
	return func(s *Store) { s.serverVersion = v }
}

// WithStateSeed pins byte 3 of every derived token to the low byte of seed.
// A negative seed (the default) leaves byte 3 random.
func WithStateSeed(seed int) Option {
	return func(s *Store) { s.stateSeed = seed }
}

// WithMutex toggles whether Store operations take its internal mutex,
// mirroring spec.md §5's spawn_workers gate: a single-worker deployment has
// no concurrent callers and can skip the lock entirely.
func WithMutex(enabled bool) Option {
	return func(s *Store) { s.useMutex = enabled }
}

// Store is the StateStore of spec.md §4.1. It bounds how many concurrent
// multi-round conversations a server holds open (MaxSessions) and how long
// any one of them may sit idle (Timeout), evicting the oldest entries first
// since insertion order equals cleanup order.
type Store struct {
	mu sync.Mutex

	maxSessions   uint32
	timeout       time.Duration
	serverVersion uint32
	stateSeed     int
	useMutex      bool

	nextID uint64
	index  map[Token]*Entry
	head   *Entry // oldest (next to expire)
	tail   *Entry // newest
}

// New builds a Store that holds at most maxSessions entries, each expiring
// timeout after creation; an entry's expiry is never extended.
func New(maxSessions uint32, timeout time.Duration, opts ...Option) *Store {
	s := &Store{
		maxSessions: maxSessions,
		timeout:     timeout,
		stateSeed:   -1,
		useMutex:    true,
		index:       make(map[Token]*Entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) lock() {
	if s.useMutex {
		s.mu.Lock()
	}
}

func (s *Store) unlock() {
	if s.useMutex {
		s.mu.Unlock()
	}
}

// Len reports the number of entries currently held.
func (s *Store) Len() int {
	s.lock()
	defer s.unlock()
	return len(s.index)
}

// reapLocked unlinks and returns every entry expired as of now. Called with
// the mutex held; the caller drops the lock before discarding the arenas,
// mirroring state.c's pattern of doing the (potentially slow) free outside
// the critical section.
func (s *Store) reapLocked(now time.Time) []*Entry {
	var expired []*Entry
	for e := s.head; e != nil && e.Expired(now); e = s.head {
		s.unlinkLocked(e)
		expired = append(expired, e)
	}
	return expired
}

func (s *Store) unlinkLocked(e *Entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
	e.prev, e.next = nil, nil
	delete(s.index, e.Token)
}

func (s *Store) appendLocked(e *Entry) {
	e.prev = s.tail
	e.next = nil
	if s.tail != nil {
		s.tail.next = e
	} else {
		s.head = e
	}
	s.tail = e
	s.index[e.Token] = e
}

// Create allocates a new Entry and writes its token into pkt's State
// attribute. previous, if supplied, is the entry this round is continuing
// (looked up by the caller via Find against the inbound State attribute
// before calling Create): its retry count and token seed the new one, and
// if it carries no persisted arena it is freed rather than kept around
// (original_source/src/main/state.c "old" handling in fr_request_to_state).
//
// Create fails (ok=false) if the store is at capacity after reaping expired
// entries — capacity is rechecked after allocation, outside the mutex held
// for the cheap bookkeeping, so concurrent callers racing for the last slot
// never both win.
func (s *Store) Create(pkt *attrs.List, previous *Entry) (entry *Entry, ok bool) {
	now := time.Now()

	s.lock()
	expired := s.reapLocked(now)
	if previous != nil && previous.Arena.Empty() {
		s.unlinkLocked(previous)
	}
	full := uint32(len(s.index)) >= s.maxSessions
	var tries uint8
	var prevToken *Token
	if previous != nil {
		tries = previous.Tries + 1
		prevToken = &previous.Token
	}
	s.unlock()

	releaseArenas(expired)

	if full {
		return nil, false
	}

	// A State attribute of the right length already on pkt is taken verbatim
	// — this is how callers that pre-compute their own key (the AUTHEN
	// per-connection state_add key, see internal/machine) pin the entry's
	// token instead of getting a random one.
	tok, verbatim := tokenFrom(pkt)
	if !verbatim {
		tok = deriveToken(tries, prevToken, s.serverVersion, s.stateSeed)
	}

	s.lock()
	if uint32(len(s.index)) >= s.maxSessions {
		s.unlock()
		return nil, false
	}
	s.nextID++
	e := &Entry{
		ID:        s.nextID,
		Token:     tok,
		CleanupAt: now.Add(s.timeout),
		Tries:     tries,
	}
	s.appendLocked(e)
	s.unlock()

	pkt.Replace(attrs.State, tok[:])
	return e, true
}

// releaseArenas exists only to give the post-unlock free a name matching
// state.c's "free outside the lock" shape; Go's GC does the actual work.
func releaseArenas(expired []*Entry) {
	for _, e := range expired {
		e.Arena = nil
	}
}

func tokenFrom(pkt *attrs.List) (Token, bool) {
	raw, ok := pkt.GetBytes(attrs.State)
	if !ok || len(raw) != len(Token{}) {
		return Token{}, false
	}
	var tok Token
	copy(tok[:], raw)
	return tok, true
}

// Find looks up the entry named by pkt's State attribute. It does not
// remove or expire the entry; callers that intend to consume it follow up
// with ToRequest or Discard.
func (s *Store) Find(pkt *attrs.List) (*Entry, bool) {
	tok, ok := tokenFrom(pkt)
	if !ok {
		return nil, false
	}

	s.lock()
	defer s.unlock()

	e, ok := s.index[tok]
	if !ok || e.Expired(time.Now()) {
		return nil, false
	}
	return e, true
}

// Discard removes the entry named by pkt's State attribute, if any.
func (s *Store) Discard(pkt *attrs.List) {
	tok, ok := tokenFrom(pkt)
	if !ok {
		return
	}

	s.lock()
	e, ok := s.index[tok]
	if ok {
		s.unlinkLocked(e)
	}
	s.unlock()
}

// ToRequest moves the arena of the entry named by pkt's State attribute
// into the caller, leaving the entry linked but empty (its slot and token
// stay reserved for the next round). It returns nil if pkt carries no
// State attribute or no live entry matches it — both ordinary, not errors
// (original_source/src/main/state.c fr_state_to_request: "packet has no
// State attribute" is a no-op, not a failure).
func (s *Store) ToRequest(pkt *attrs.List) *attrs.Arena {
	tok, ok := tokenFrom(pkt)
	if !ok {
		return nil
	}

	s.lock()
	defer s.unlock()

	e, ok := s.index[tok]
	if !ok || e.Expired(time.Now()) {
		return nil
	}
	return e.Arena.Take()
}

// FromRequest persists arena against a new or continued entry and writes
// the resulting token into pkt's State attribute. If original names an
// existing entry, that entry seeds the new one (its tries, its token) and
// is freed if it holds no persisted arena. If arena carries neither session-state attributes nor
// persisted data, FromRequest is a no-op that reports ok=true without
// allocating (spec.md §4.1's "returns true without allocating" fast path).
func (s *Store) FromRequest(arena *attrs.Arena, original, pkt *attrs.List) bool {
	if arena.Empty() {
		return true
	}

	var previous *Entry
	if original != nil {
		previous, _ = s.Find(original)
	}

	entry, ok := s.Create(pkt, previous)
	if !ok {
		return false
	}
	entry.Arena = arena.Take()
	return true
}
