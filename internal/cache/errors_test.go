package cache

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/morrowdev/recache/internal/store"
)

func TestError_Message(t *testing.T) {
	err := &Error{
		Code:        CodeMissingRecord,
		Message:     "window has closed with no recorded attempt",
		Fingerprint: "abc123",
		Branch:      2,
	}

	assert.Contains(t, err.Error(), "MISSING_RECORD")
	assert.Contains(t, err.Error(), "abc123")
	assert.Contains(t, err.Error(), "branch=2")
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &Error{Code: CodeStoreIO, Message: "insert failed", Err: cause}

	assert.ErrorIs(t, err, cause)
}

func TestPredicates_MatchWrappedErrors(t *testing.T) {
	inner := &Error{Code: CodePollTimeout, Message: "gave up"}
	wrapped := fmt.Errorf("invoke: %w", inner)

	assert.True(t, IsPollTimeout(wrapped))
	assert.False(t, IsMissingRecord(wrapped))
	assert.False(t, IsStoredFailure(wrapped))
}

func TestStoredFailureError_CarriesOriginal(t *testing.T) {
	cause := errors.New("boom")
	err := &StoredFailureError{Message: "boom", Trace: "trace", Err: cause}

	assert.True(t, IsStoredFailure(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}

func TestStoredFailureError_ReplayedHasNoCause(t *testing.T) {
	err := &StoredFailureError{Message: "boom", Trace: "trace"}

	assert.True(t, IsStoredFailure(err))
	assert.Nil(t, errors.Unwrap(err))
}

func TestError_WindowField(t *testing.T) {
	err := &Error{
		Code:    CodePollTimeout,
		Message: "gave up",
		Window:  store.Window{Start: 1, End: 2},
	}
	assert.Equal(t, 1.0, err.Window.Start)
	assert.Equal(t, 2.0, err.Window.End)
}
