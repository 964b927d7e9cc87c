// Package pool runs a function over a batch of items on a fixed number of
// goroutines and returns the results in input order.
package pool

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// AllUnits sizes a pool to every available hardware unit.
const AllUnits = -1

// Pool is a bounded set of workers. It holds no per-batch state and may be
// reused for any number of Map calls.
type Pool struct {
	workers int
}

// New creates a pool with the given number of workers. Values <= 0, including
// AllUnits, mean runtime.GOMAXPROCS(0).
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Map applies fn to every item and returns the results in input order.
// fn receives the item's index alongside the item.
//
// The batch fails as a whole: once any call returns an error no further
// items are dispatched and Map waits for in-flight calls before returning nil
// results with the error of the lowest failing index. Calls that only report
// the cancellation caused by another item's failure never mask that failure.
// Map returns only after every worker has exited.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(ctx context.Context, i int, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	workers := p.workers
	if workers > len(items) {
		workers = len(items)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu        sync.Mutex
		firstIdx  = -1
		firstErr  error
		cancelErr error
	)
	fail := func(i int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if isCancellation(err) {
			if cancelErr == nil {
				cancelErr = err
			}
			cancel()
			return
		}
		if firstIdx < 0 || i < firstIdx {
			firstIdx, firstErr = i, err
		}
		cancel()
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				r, err := fn(ctx, i, items[i])
				if err != nil {
					fail(i, err)
					continue
				}
				results[i] = r
			}
		}()
	}

	sent := 0
dispatch:
	for i := range items {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			sent++
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if cancelErr != nil {
		return nil, cancelErr
	}
	// Cancelled by the caller rather than by a failing item.
	if sent < len(items) {
		return nil, ctx.Err()
	}
	return results, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
