// Package redisstate is an alternate StateStore backend for deployments
// that run more than one tacacsd process behind a load balancer: state
// lives in Redis/Valkey instead of process memory, so a conversation's
// second round can land on a different process than its first.
//
// Grounded on the RADIUS proof-of-concept's Valkey-backed stores (key
// prefix + Get/Set against a shared client, redis.Nil treated as a miss,
// TTL doing the expiry work that corestate.Store's reaper does by hand).
//
// Capacity accounting is necessarily approximate here: Redis expires keys
// on its own clock, so the active-count set this package maintains can
// include tokens for entries Redis has already reclaimed until the next
// Discard or FromRequest touches them. corestate.Store's exact, FIFO-order
// eviction (invariant I2) is not reproduced; this is an accepted
// relaxation for the clustered backend, not a bug.
package redisstate
