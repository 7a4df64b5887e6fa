// Package state implements §4.1's state_store_provider contract: a
// versioned, partition-scoped key/value store with three implementations,
// one per profile (§4.7) — MemoryStateStore (test), SQLiteStateStore
// (development), RedisStateStore (production).
package state
