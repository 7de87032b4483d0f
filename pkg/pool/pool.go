package pool

import (
	"context"
	"sync"
)

// WorkerFunc defines the function signature for a worker that processes an item and may return an error.
type WorkerFunc[T any] func(ctx context.Context, item T) error

// Run processes items with up to numWorkers goroutines and returns the errors
// of the failed items, in the order the items were given. Once ctx is done no
// new item is started. numWorkers below one is treated as one.
func Run[T any](ctx context.Context, items []T, numWorkers int, workerFunc WorkerFunc[T]) []error {
	if len(items) == 0 {
		return nil
	}
	numWorkers = max(1, min(numWorkers, len(items)))

	results := make([]error, len(items))
	indexes := make(chan int, numWorkers)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				if ctx.Err() != nil {
					continue
				}
				results[idx] = workerFunc(ctx, items[idx])
			}
		}()
	}

OUT:
	for idx := range items {
		select {
		case indexes <- idx:
		case <-ctx.Done():
			// Stop feeding tasks if the context is cancelled
			break OUT
		}
	}
	close(indexes)
	wg.Wait()

	var allErrors []error
	for _, err := range results {
		if err != nil {
			allErrors = append(allErrors, err)
		}
	}
	return allErrors
}
