package cache

import (
	"errors"
	"fmt"

	"github.com/morrowdev/recache/internal/store"
)

// ErrorCode categorizes coordination errors.
type ErrorCode string

const (
	// CodeStoreIO indicates a store connection or statement failure.
	CodeStoreIO ErrorCode = "STORE_IO"

	// CodeSerialization indicates a result payload could not be
	// encoded or decoded.
	CodeSerialization ErrorCode = "SERIALIZATION"

	// CodeMissingRecord indicates a closed (past) time window has no
	// record at all; recomputation is intentionally refused.
	CodeMissingRecord ErrorCode = "MISSING_RECORD"

	// CodePollTimeout indicates a Pending record never resolved within
	// the maximum poll duration.
	CodePollTimeout ErrorCode = "POLL_TIMEOUT"
)

// Error is a coordination error with structured fields for diagnostics.
type Error struct {
	Code        ErrorCode
	Message     string
	Fingerprint string
	Branch      int
	Window      store.Window
	Err         error // underlying cause, optional
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Fingerprint != "" {
		return fmt.Sprintf("%s: %s (fingerprint=%s, branch=%d)", e.Code, e.Message, e.Fingerprint, e.Branch)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StoredFailureError replays a recorded failure of the wrapped
// operation. It carries the original failure text and, when the failure
// happened in this process, the original error itself.
type StoredFailureError struct {
	// Message is the original failure text.
	Message string

	// Trace is the stack trace captured when the failure was recorded.
	Trace string

	// Err is the original error. Nil when the failure was replayed from
	// the store rather than raised by this invocation.
	Err error
}

func (e *StoredFailureError) Error() string {
	return fmt.Sprintf("stored failure: %s", e.Message)
}

func (e *StoredFailureError) Unwrap() error {
	return e.Err
}

// IsMissingRecord reports whether err is a closed-window miss.
func IsMissingRecord(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == CodeMissingRecord
}

// IsPollTimeout reports whether err is a poll timeout.
func IsPollTimeout(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == CodePollTimeout
}

// IsSerialization reports whether err is a payload encode/decode failure.
func IsSerialization(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == CodeSerialization
}

// IsStoredFailure reports whether err replays a recorded operation
// failure.
func IsStoredFailure(err error) bool {
	var se *StoredFailureError
	return errors.As(err, &se)
}
