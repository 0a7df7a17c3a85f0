// Package worker runs independent questions concurrently for batch mode.
// Each job is a self-contained conversation; ordering guarantees apply
// within a conversation, not across them, so fan-out is safe.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of batch work.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one job.
type Result interface {
	Err() error
}

// Pool executes jobs with bounded concurrency. Results come back in
// submission order regardless of completion order.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given worker count.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run executes all jobs and returns their results, index-aligned with
// the input. It blocks until every job has finished or the context is
// done; jobs observe cancellation through their own ctx handling.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	sem := make(chan struct{}, p.workers)

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = job.Execute(ctx)
		}(i, job)
	}
	wg.Wait()

	return results
}
