package workers

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type job[T any] struct {
	index int
	value T
}

type result[R any] struct {
	index int
	value R
}

// Pool executes jobs with at most Size concurrent handlers.
type Pool[T, R any] struct {
	size     int
	handle   Handler[T, R]
	canceled Canceled[T, R]
}

// NewPool returns a pool of size workers. Sizes below one are raised to one.
func NewPool[T, R any](size int, handle Handler[T, R], canceled Canceled[T, R]) *Pool[T, R] {
	return &Pool[T, R]{
		size:     max(size, 1),
		handle:   handle,
		canceled: canceled,
	}
}

// Size reports the number of workers.
func (p *Pool[T, R]) Size() int {
	return p.size
}

// Run feeds every job through the pool and returns results in job order.
// Once ctx is done, workers stop starting handlers and drain the remaining
// queue into canceled results. Run returns after every handler has returned.
func (p *Pool[T, R]) Run(ctx context.Context, jobs []T) []R {
	queue := make(chan job[T], len(jobs))
	for i, v := range jobs {
		queue <- job[T]{index: i, value: v}
	}
	close(queue)

	results := make(chan result[R], len(jobs))

	var g errgroup.Group
	for range min(p.size, max(len(jobs), 1)) {
		g.Go(func() error {
			for j := range queue {
				if err := ctx.Err(); err != nil {
					results <- result[R]{index: j.index, value: p.canceled(j.index, j.value, err)}
					continue
				}
				results <- result[R]{index: j.index, value: p.handle(ctx, j.index, j.value)}
			}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	out := make([]R, len(jobs))
	for r := range results {
		out[r.index] = r.value
	}

	return out
}
