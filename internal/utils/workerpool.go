package utils

import (
	"context"
	"sync"
)

// RunEach calls fn for every item using at most workers goroutines and
// returns the per-item errors in item order. Items not started before ctx
// is cancelled get ctx.Err().
func RunEach[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error) []error {
	errs := make([]error, len(items))
	if len(items) == 0 {
		return errs
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				errs[idx] = fn(ctx, items[idx])
			}
		}()
	}

	next := 0
submit:
	for ; next < len(items); next++ {
		select {
		case <-ctx.Done():
			break submit
		case indexes <- next:
		}
	}
	close(indexes)
	wg.Wait()

	for ; next < len(items); next++ {
		errs[next] = ctx.Err()
	}
	return errs
}
