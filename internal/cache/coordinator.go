package cache

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/morrowdev/recache/internal/fingerprint"
	"github.com/morrowdev/recache/internal/store"
)

// Operation is the wrapped computation. It receives the caller's
// arguments with the reserved cache-partitioning keys already stripped.
// Its return value must be JSON-encodable.
type Operation func(ctx context.Context, args []any, kwargs map[string]any) (any, error)

// Poll tuning defaults. A Pending record left by a caller that never
// finishes will hold later callers for the full MaxPollTime before they
// give up with a poll timeout.
const (
	DefaultPollInterval = 3 * time.Millisecond
	DefaultMaxPollTime  = 10 * time.Second
)

// Coordinator arbitrates cached invocations against a record store.
//
// Safe for concurrent use: all coordination state lives in the store,
// and the coordinator itself is immutable after construction.
type Coordinator struct {
	store        *store.Store
	log          *slog.Logger
	now          func() time.Time
	pollInterval time.Duration
	maxPollTime  time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger. Default slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// WithClock sets the wall-clock source. Used by tests to pin request
// time.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithPollInterval sets how often an in-flight record is re-checked.
func WithPollInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.pollInterval = d }
}

// WithMaxPollTime bounds how long a caller waits on an in-flight record.
func WithMaxPollTime(d time.Duration) Option {
	return func(c *Coordinator) { c.maxPollTime = d }
}

// New creates a Coordinator over the given store.
func New(s *store.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:        s,
		log:          slog.Default(),
		now:          time.Now,
		pollInterval: DefaultPollInterval,
		maxPollTime:  DefaultMaxPollTime,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke runs name/op through the cache state machine.
//
// kwargs may carry the reserved partitioning keys (worker id, branch,
// window bounds); they are stripped before fingerprinting and before op
// sees the arguments. All other args/kwargs are forwarded verbatim and
// included in the fingerprint.
//
// Exactly one outcome is recorded per attempt; failures of op are
// persisted and re-raised, never swallowed.
func (c *Coordinator) Invoke(ctx context.Context, name string, op Operation, args []any, kwargs map[string]any) (any, error) {
	requestTime := float64(c.now().UnixNano()) / float64(time.Second)

	opts, cleaned := fingerprint.Split(kwargs)
	fp := fingerprint.Fingerprint(name, args, cleaned)
	w := store.Window{Start: opts.Start, End: opts.End}

	log := c.log.With(
		slog.String("op", name),
		slog.String("fingerprint", fp[:12]),
		slog.Int("branch", opts.Branch),
	)

	// Completed record in range wins outright.
	rec, err := c.store.Best(ctx, fp, opts.Branch, w, store.StatusCompleted)
	if err != nil {
		return nil, c.storeErr(err, fp, opts.Branch, w)
	}
	if rec != nil {
		log.Debug("cached result found, returning from store")
		return c.decodeCompleted(rec)
	}

	// Another caller is computing: wait for its result.
	pending, err := c.store.ExistsWithStatus(ctx, fp, opts.Branch, w, store.StatusPending)
	if err != nil {
		return nil, c.storeErr(err, fp, opts.Branch, w)
	}
	if pending {
		log.Debug("operation pending elsewhere, polling for result")
		return c.awaitCompleted(ctx, fp, opts.Branch, w)
	}

	// A failure in an already-closed window is immutable: replay it.
	failed, err := c.store.ExistsWithStatus(ctx, fp, opts.Branch, w, store.StatusFailed)
	if err != nil {
		return nil, c.storeErr(err, fp, opts.Branch, w)
	}
	if failed && w.ClosedBefore(requestTime) {
		log.Debug("replaying stored failure for closed window")
		return nil, c.replayFailure(ctx, fp, opts.Branch, w)
	}
	// A failure in a still-open window may legitimately be retried:
	// fall through to recomputation.

	if w.ClosedBefore(requestTime) {
		return nil, &Error{
			Code:        CodeMissingRecord,
			Message:     "window has closed with no recorded attempt",
			Fingerprint: fp,
			Branch:      opts.Branch,
			Window:      w,
		}
	}

	return c.compute(ctx, log, op, args, cleaned, fp, opts.Branch, w, requestTime)
}

// compute inserts a Pending record, runs the operation, and persists
// its outcome.
func (c *Coordinator) compute(ctx context.Context, log *slog.Logger, op Operation, args []any, kwargs map[string]any, fp string, branch int, w store.Window, requestTime float64) (any, error) {
	id, err := c.store.InsertPending(ctx, fp, branch, requestTime)
	if err != nil {
		return nil, c.storeErr(err, fp, branch, w)
	}

	log.Debug("no usable record in window, computing", slog.String("record", id))

	value, opErr := op(ctx, args, kwargs)
	if opErr != nil {
		trace := string(debug.Stack())
		blob, encErr := encodeFailure(opErr.Error(), trace)
		if encErr != nil {
			return nil, encErr
		}
		if err := c.store.MarkDone(ctx, id, store.StatusFailed, blob); err != nil {
			return nil, c.storeErr(err, fp, branch, w)
		}
		log.Debug("operation failed, failure recorded", slog.String("record", id))
		return nil, &StoredFailureError{Message: opErr.Error(), Trace: trace, Err: opErr}
	}

	blob, err := encodeValue(value)
	if err != nil {
		return nil, err
	}
	if err := c.store.MarkDone(ctx, id, store.StatusCompleted, blob); err != nil {
		return nil, c.storeErr(err, fp, branch, w)
	}

	// Re-read the best Completed record rather than returning our own
	// value: if another writer completed first, every caller converges
	// on the record the priority query selects.
	rec, err := c.store.Best(ctx, fp, branch, w, store.StatusCompleted)
	if err != nil {
		return nil, c.storeErr(err, fp, branch, w)
	}
	if rec == nil {
		// Our own MarkDone lost a race against nothing visible; fall
		// back to the value we just computed.
		return value, nil
	}
	return c.decodeCompleted(rec)
}

// awaitCompleted polls for a Completed record until it appears or the
// bounded poll duration elapses.
func (c *Coordinator) awaitCompleted(ctx context.Context, fp string, branch int, w store.Window) (any, error) {
	found, err := poll(ctx, c.pollInterval, c.maxPollTime, func(ctx context.Context) (bool, error) {
		return c.store.ExistsWithStatus(ctx, fp, branch, w, store.StatusCompleted)
	})
	if err != nil {
		return nil, c.storeErr(err, fp, branch, w)
	}
	if !found {
		return nil, &Error{
			Code:        CodePollTimeout,
			Message:     "pending record did not resolve within " + c.maxPollTime.String(),
			Fingerprint: fp,
			Branch:      branch,
			Window:      w,
		}
	}

	rec, err := c.store.Best(ctx, fp, branch, w, store.StatusCompleted)
	if err != nil {
		return nil, c.storeErr(err, fp, branch, w)
	}
	if rec == nil {
		return nil, &Error{
			Code:        CodePollTimeout,
			Message:     "completed record vanished between poll and retrieval",
			Fingerprint: fp,
			Branch:      branch,
			Window:      w,
		}
	}
	return c.decodeCompleted(rec)
}

// replayFailure retrieves the stored failure for a closed window and
// surfaces it with the original failure text.
func (c *Coordinator) replayFailure(ctx context.Context, fp string, branch int, w store.Window) error {
	rec, err := c.store.Best(ctx, fp, branch, w, store.StatusFailed)
	if err != nil {
		return c.storeErr(err, fp, branch, w)
	}
	if rec == nil {
		return &Error{
			Code:        CodeMissingRecord,
			Message:     "failed record vanished before retrieval",
			Fingerprint: fp,
			Branch:      branch,
			Window:      w,
		}
	}

	_, failure, err := decodeOutcome(rec.Result)
	if err != nil {
		return err
	}
	if failure == nil {
		// A failed record holding a value outcome is corrupt.
		return &Error{
			Code:        CodeSerialization,
			Message:     "failed record holds no failure payload",
			Fingerprint: fp,
			Branch:      branch,
			Window:      w,
		}
	}
	return &StoredFailureError{Message: failure.Message, Trace: failure.Trace}
}

// decodeCompleted decodes a Completed record's stored value.
func (c *Coordinator) decodeCompleted(rec *store.Record) (any, error) {
	value, failure, err := decodeOutcome(rec.Result)
	if err != nil {
		return nil, err
	}
	if failure != nil {
		// Defensive: a Completed record should never hold a failure,
		// but if one does, surface it rather than a nil value.
		return nil, &StoredFailureError{Message: failure.Message, Trace: failure.Trace}
	}
	return value, nil
}

func (c *Coordinator) storeErr(err error, fp string, branch int, w store.Window) error {
	// Already-classified errors and context cancellation pass through.
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &Error{
		Code:        CodeStoreIO,
		Message:     "record store operation failed",
		Fingerprint: fp,
		Branch:      branch,
		Window:      w,
		Err:         err,
	}
}
