// Package workers provides the bounded worker pool used to execute sync
// actions concurrently.
//
// A [Pool] runs a fixed number of goroutines over a closed queue of jobs and
// collects one result per job through a channel, so result i always belongs
// to job i regardless of completion order.
package workers

import "context"

// Handler processes the job at index. Handlers report failures through their
// result value; the pool itself never fails.
//
// Example implementation:
//
//	handle := func(ctx context.Context, i int, a Action) Outcome {
//	    return execute(ctx, a)
//	}
type Handler[T, R any] func(ctx context.Context, index int, job T) R

// Canceled builds the result for a job that was never started because the
// context was already done when a worker picked it up.
type Canceled[T, R any] func(index int, job T, err error) R
