package store

import (
	"fmt"
	"math"
	"time"
)

// Status is the lifecycle state of a cache record.
//
// The integer values double as the priority order used by retrieval
// queries (ORDER BY status DESC): Completed beats Pending beats Failed.
type Status int

const (
	// StatusFailed marks an attempt whose operation raised an error.
	// The record's result holds the serialized failure.
	StatusFailed Status = 0

	// StatusPending marks an attempt that has started but not finished.
	StatusPending Status = 1

	// StatusCompleted marks a successful attempt. The record's result
	// holds the serialized return value.
	StatusCompleted Status = 2
)

// String returns the status name for logs and CLI output.
func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	return s == StatusFailed || s == StatusPending || s == StatusCompleted
}

// Terminal reports whether a record in this status may never change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Window is a [Start, End] range over logical time. End may be +Inf,
// meaning the upper bound is open.
type Window struct {
	Start float64
	End   float64
}

// OpenWindow returns a window from start with no upper bound.
func OpenWindow(start float64) Window {
	return Window{Start: start, End: math.Inf(1)}
}

// Unbounded reports whether the window has no upper bound.
func (w Window) Unbounded() bool {
	return math.IsInf(w.End, 1)
}

// Contains reports whether logical time t falls inside the window.
func (w Window) Contains(t float64) bool {
	return t >= w.Start && (w.Unbounded() || t <= w.End)
}

// ClosedBefore reports whether the window's end bound already lies in
// the past relative to now. A closed window is immutable: its outcome
// (success, failure, or never-attempted) may be replayed but not
// recomputed.
func (w Window) ClosedBefore(now float64) bool {
	return !w.Unbounded() && w.End < now
}

// insertedAtLayout is the format of the inserted_at column, produced by
// the schema's strftime default (millisecond precision, UTC).
const insertedAtLayout = "2006-01-02T15:04:05.000"

// Record is one persisted attempt at a fingerprinted operation.
type Record struct {
	ID          string
	Branch      int
	Fingerprint string
	InsertedAt  time.Time
	LogicalTime float64
	Status      Status
	Payload     string // reserved, not populated by the coordinator
	Result      []byte // serialized outcome; nil while Pending
}
