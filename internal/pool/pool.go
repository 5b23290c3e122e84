// Package pool provides the fixed-capacity task execution resource shared
// by every fan-out site within one pipeline instance. Summarization and
// validation tasks queue onto the same pool, so cross-stage contention is
// bounded by a single capacity.
package pool

import "sync"

// DefaultSize is the default worker capacity.
const DefaultSize = 3

// Pool is a bounded worker pool. The zero value is not usable; use New.
type Pool struct {
	sem chan struct{}
}

// New creates a pool with the given capacity (DefaultSize if non-positive).
func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Size returns the pool capacity.
func (p *Pool) Size() int { return cap(p.sem) }

// Each runs fn(i) for every i in [0, n) with at most Size tasks in flight
// and blocks until all of them have finished. There is no cancellation:
// once dispatched, every task runs to completion. Results are the caller's
// responsibility (fn writes into caller-owned, index-aligned slots); Each
// returns the lowest-index error, if any.
func (p *Pool) Each(n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}

	errs := make([]error, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		p.sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-p.sem }()
			errs[i] = fn(i)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
