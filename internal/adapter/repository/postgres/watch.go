package postgres

import (
	"context"
	"time"
)

// pollChanges backs the Watch queries: it emits the initial result set,
// then re-runs fetch on every tick and emits a fresh snapshot whenever
// the result set changed. Fetch errors are skipped; the next tick polls
// again. The channel is closed when ctx is cancelled.
func pollChanges[T any](ctx context.Context, interval time.Duration, fetch func(ctx context.Context) ([]T, error), equal func(a, b []T) bool) (<-chan []T, error) {
	initial, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	ch := make(chan []T, 1)
	ch <- initial

	go func() {
		defer close(ch)
		last := initial
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap, err := fetch(ctx)
				if err != nil {
					continue
				}
				if equal(last, snap) {
					continue
				}
				last = snap
				select {
				case ch <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
