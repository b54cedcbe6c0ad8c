// Package fanout runs a function across a slice of items with bounded
// concurrency, preserving input order in the results.
package fanout

import (
	"context"
	"sync"
)

// Result holds the outcome of processing a single item.
// Either Value is populated (on success) or Err is non-nil (on failure).
type Result[R any] struct {
	Value R
	Err   error
}

// Run executes fn for each item using at most maxWorkers goroutines at a
// time and blocks until every item is done. Results line up with items.
//
// An item that gets a worker slot without waiting always runs, even when
// ctx is already canceled; fn decides how to treat the canceled context.
// An item still waiting for a slot when ctx is canceled records ctx.Err()
// and fn is not called for it. A maxWorkers below 1 is treated as 1.
func Run[T, R any](ctx context.Context, maxWorkers int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}

	sem := make(chan struct{}, max(maxWorkers, 1))
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Go(func() {
			if !acquire(ctx, sem) {
				results[i] = Result[R]{Err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			val, err := fn(ctx, item)
			results[i] = Result[R]{Value: val, Err: err}
		})
	}

	wg.Wait()
	return results
}

// acquire takes a free slot immediately if one exists, otherwise waits for
// a slot or for ctx to end.
func acquire(ctx context.Context, sem chan struct{}) bool {
	select {
	case sem <- struct{}{}:
		return true
	default:
	}

	select {
	case sem <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}
