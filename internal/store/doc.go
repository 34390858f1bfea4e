// Package store provides SQLite-backed durable storage for cache records.
//
// The store is an append-mostly log of attempts at fingerprinted
// operations:
//   - InsertPending: record that an attempt has started
//   - MarkDone: transition an attempt to Completed or Failed (terminal)
//   - ExistsWithStatus / Best: window-filtered, priority-ranked lookup
//
// # Query discipline
//
// Retrieval always filters by (fingerprint, branch) and a [start, end]
// window over logical_time, then ranks by status priority
// (Completed > Pending > Failed) and insertion time ascending. Ties are
// broken by id so results are deterministic.
//
// # Concurrency
//
// Statements are serialized through a per-store mutex: the store is
// shared by concurrently invoking callers and SQLite connections are
// not assumed safe for unsynchronized statement execution. Each
// statement commits as its own atomic unit; there is deliberately no
// multi-statement transaction spanning a check-then-act sequence, so
// two callers may both observe "no record" and both insert. The
// coordinator layer documents and tolerates that race.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
package store
