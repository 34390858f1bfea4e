// Package cache implements the result-cache coordination layer.
//
// A Coordinator arbitrates every invocation of a cached operation
// against the persisted record log, in fixed priority order:
//
//  1. A Completed record in the window is returned directly.
//  2. A Pending record means another caller is computing: poll for its
//     Completed result up to a bounded duration.
//  3. A Failed record in an already-closed window replays the stored
//     failure verbatim.
//  4. A closed window with no record at all is a hard miss: the caller
//     asked for a historical, now-immutable result and recomputation is
//     refused.
//  5. Otherwise the operation runs, its outcome (value or failure) is
//     persisted, and the failure is re-raised if there was one.
//
// Coordination happens entirely through the store: concurrent callers,
// even in different processes, share no in-memory state. There is no
// atomic check-and-insert, so two callers racing at the check/insert
// boundary may both compute; they still converge on one recorded
// outcome per (fingerprint, branch, timerange).
package cache
