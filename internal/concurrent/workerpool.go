package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs independent jobs with a bounded number of goroutines.
type WorkerPool struct {
	workerCount int
}

func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{workerCount: workerCount}
}

// RunAll executes every job even when some fail. The returned slice is
// aligned with jobs: errs[i] is the outcome of jobs[i].
func (wp *WorkerPool) RunAll(ctx context.Context, jobs ...func(ctx context.Context) error) []error {
	errs := make([]error, len(jobs))
	if len(jobs) == 0 {
		return errs
	}

	g := new(errgroup.Group)
	g.SetLimit(wp.workerCount)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = job(ctx)
			return nil
		})
	}

	_ = g.Wait()
	return errs
}

// CountFailures returns how many entries of errs are non-nil.
func CountFailures(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}
