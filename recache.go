// Package recache memoizes results of expensive, time-scoped,
// potentially non-deterministic operations in a shared SQLite log, so
// that concurrent or repeated callers with identical inputs and
// overlapping validity windows observe one execution and a consistent
// result - including a consistent stored failure.
//
// Callers pass four reserved keyword arguments to partition the cache
// without affecting the operation's fingerprint: KeyWorkerID,
// KeyBranch, KeyWindowStart and KeyWindowEnd. Everything else is
// forwarded to the operation verbatim and fingerprinted.
//
//	c, err := recache.Open("experiments.db")
//	...
//	result, err := c.Invoke(ctx, "run_trial", runTrial,
//		[]any{"prompt"},
//		map[string]any{recache.KeyBranch: 1})
package recache

import (
	"context"

	"github.com/morrowdev/recache/internal/cache"
	"github.com/morrowdev/recache/internal/config"
	"github.com/morrowdev/recache/internal/fingerprint"
	"github.com/morrowdev/recache/internal/store"
)

// Operation is a cached computation. Its return value must be
// JSON-encodable; it round-trips through the store.
type Operation = cache.Operation

// Option configures the coordinator (poll interval, clock, logger).
type Option = cache.Option

// Coordinator tuning options.
var (
	WithLogger       = cache.WithLogger
	WithClock        = cache.WithClock
	WithPollInterval = cache.WithPollInterval
	WithMaxPollTime  = cache.WithMaxPollTime
)

// Reserved keyword argument keys. Stripped before fingerprinting and
// never forwarded to the operation.
const (
	KeyWorkerID    = fingerprint.KeyWorkerID
	KeyBranch      = fingerprint.KeyBranch
	KeyWindowStart = fingerprint.KeyWindowStart
	KeyWindowEnd   = fingerprint.KeyWindowEnd
)

// Error classification helpers.
var (
	IsMissingRecord = cache.IsMissingRecord
	IsPollTimeout   = cache.IsPollTimeout
	IsStoredFailure = cache.IsStoredFailure
	IsSerialization = cache.IsSerialization
)

// Cache is the user-facing handle: a record store plus the coordinator
// arbitrating invocations against it. Safe for concurrent use.
type Cache struct {
	store *store.Store
	coord *cache.Coordinator
}

// Open creates or opens the cache database at path.
func Open(path string, opts ...Option) (*Cache, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	return &Cache{store: s, coord: cache.New(s, opts...)}, nil
}

// OpenFromEnv opens the cache at the location named by RECACHE_DB_PATH
// (default recache.db), applying poll tuning from the resolved
// configuration.
func OpenFromEnv(opts ...Option) (*Cache, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	all := append([]Option{
		cache.WithPollInterval(cfg.PollInterval),
		cache.WithMaxPollTime(cfg.MaxPollTime),
	}, opts...)

	return Open(cfg.DBPath, all...)
}

// Invoke runs the named operation through the cache state machine. See
// the package documentation for the reserved kwargs.
func (c *Cache) Invoke(ctx context.Context, name string, op Operation, args []any, kwargs map[string]any) (any, error) {
	return c.coord.Invoke(ctx, name, op, args, kwargs)
}

// Close releases the underlying database connection.
func (c *Cache) Close() error {
	return c.store.Close()
}
