package cache

import (
	"context"
	"time"
)

// poll invokes probe at a fixed interval until it reports done, maxWait
// elapses, or ctx is cancelled.
//
// Returns (true, nil) when the probe reported done, (false, nil) when
// maxWait elapsed first. Probe errors and context cancellation abort
// the wait immediately.
func poll(ctx context.Context, interval, maxWait time.Duration, probe func(context.Context) (bool, error)) (bool, error) {
	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := probe(ctx)
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			return false, nil
		case <-ticker.C:
		}
	}
}
