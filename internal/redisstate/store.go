package redisstate

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vitalvas/tacacsd/internal/attrs"
	"github.com/vitalvas/tacacsd/internal/machine"
)

const (
	keyPrefix = "tacacsd:state:"
	indexKey  = "tacacsd:state:index"
)

// record is the JSON shape an Entry's surviving fields are stored as;
// Token and CleanupAt aren't included since the Redis key and its TTL
// already carry that information.
type record struct {
	Tries uint8          `json:"tries"`
	VPs   attrs.List     `json:"vps,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// Store is a Redis/Valkey-backed machine.StateStore.
type Store struct {
	rdb         *redis.Client
	maxSessions uint32
	timeout     time.Duration
	log         *zap.Logger
}

// New builds a Store against an already-connected client.
func New(rdb *redis.Client, maxSessions uint32, timeout time.Duration, log *zap.Logger) *Store {
	return &Store{rdb: rdb, maxSessions: maxSessions, timeout: timeout, log: log}
}

var _ machine.StateStore = (*Store)(nil)

func (s *Store) logError(op string, err error) {
	if err == redis.Nil || s.log == nil {
		return
	}
	s.log.Warn("redisstate backend error", zap.String("op", op), zap.Error(err))
}

func randomToken() [16]byte {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return b
}

func tokenFrom(pkt *attrs.List) ([16]byte, bool) {
	raw, ok := pkt.GetBytes(attrs.State)
	if !ok || len(raw) != 16 {
		return [16]byte{}, false
	}
	var tok [16]byte
	copy(tok[:], raw)
	return tok, true
}

func keyFor(tok [16]byte) string {
	return keyPrefix + hex.EncodeToString(tok[:])
}

func member(tok [16]byte) string {
	return hex.EncodeToString(tok[:])
}

func (s *Store) count(ctx context.Context) (int64, error) {
	return s.rdb.SCard(ctx, indexKey).Result()
}

// Len reports the approximate number of live entries, for the occupancy
// gauge daemon.Daemon exposes; see the package doc for why this can
// overcount briefly relative to corestate.Store.Len.
func (s *Store) Len() int {
	n, err := s.count(context.Background())
	if err != nil {
		s.logError("scard", err)
		return 0
	}
	return int(n)
}

// ToRequest implements machine.StateStore. It reads and clears the entry's
// persisted data, leaving the token's key (and its TTL) alone so the slot
// stays reserved for the round this conversation continues with
// (corestate.Store.ToRequest's "linked but empty" behavior, expressed here
// as "same key, body replaced with Tries only").
func (s *Store) ToRequest(pkt *attrs.List) *attrs.Arena {
	ctx := context.Background()
	tok, ok := tokenFrom(pkt)
	if !ok {
		return nil
	}

	raw, err := s.rdb.Get(ctx, keyFor(tok)).Bytes()
	if err != nil {
		s.logError("get", err)
		return nil
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logError("unmarshal", err)
		return nil
	}

	arena := &attrs.Arena{VPs: rec.VPs, Data: rec.Data}
	if arena.Empty() {
		return arena
	}

	cleared, err := json.Marshal(record{Tries: rec.Tries})
	if err != nil {
		s.logError("marshal", err)
		return arena
	}
	if err := s.rdb.Set(ctx, keyFor(tok), cleared, redis.KeepTTL).Err(); err != nil {
		s.logError("set", err)
	}
	return arena
}

// Discard implements machine.StateStore.
func (s *Store) Discard(pkt *attrs.List) {
	ctx := context.Background()
	tok, ok := tokenFrom(pkt)
	if !ok {
		return
	}
	if err := s.rdb.Del(ctx, keyFor(tok)).Err(); err != nil {
		s.logError("del", err)
	}
	if err := s.rdb.SRem(ctx, indexKey, member(tok)).Err(); err != nil {
		s.logError("srem", err)
	}
}

// FromRequest implements machine.StateStore. original, if it names a live
// entry, seeds the new one's retry count and is freed; capacity is only
// enforced for conversations that aren't already continuing an entry,
// matching corestate.Store.Create's "previous entries don't compete for
// their own slot" rule.
func (s *Store) FromRequest(arena *attrs.Arena, original, pkt *attrs.List) bool {
	if arena.Empty() {
		return true
	}
	ctx := context.Background()

	var previousTok *[16]byte
	var tries uint8
	if original != nil {
		if t, ok := tokenFrom(original); ok {
			if raw, err := s.rdb.Get(ctx, keyFor(t)).Bytes(); err == nil {
				var rec record
				if json.Unmarshal(raw, &rec) == nil {
					tries = rec.Tries + 1
					previousTok = &t
				}
			}
		}
	}

	if previousTok == nil {
		n, err := s.count(ctx)
		if err != nil {
			s.logError("scard", err)
			return false
		}
		if n >= int64(s.maxSessions) {
			return false
		}
	}

	tok, verbatim := tokenFrom(pkt)
	if !verbatim {
		tok = randomToken()
	}

	moved := arena.Take()
	rec := record{Tries: tries, VPs: moved.VPs, Data: moved.Data}
	data, err := json.Marshal(rec)
	if err != nil {
		s.logError("marshal", err)
		return false
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, keyFor(tok), data, s.timeout)
	pipe.SAdd(ctx, indexKey, member(tok))
	if previousTok != nil && *previousTok != tok {
		pipe.Del(ctx, keyFor(*previousTok))
		pipe.SRem(ctx, indexKey, member(*previousTok))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logError("exec", err)
		return false
	}

	pkt.Replace(attrs.State, tok[:])
	return true
}
