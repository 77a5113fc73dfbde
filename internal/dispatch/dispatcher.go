package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/BruksfildServices01/appointment-invites/internal/logging"
)

// Job is background work submitted after a transaction commits.
type Job struct {
	Name string
	Ctx  context.Context
	Run  func(ctx context.Context)
}

// Dispatcher runs best-effort jobs on a bounded queue. A full queue drops
// the job with a log line; the caller is never blocked.
type Dispatcher struct {
	queue    chan Job
	wg       sync.WaitGroup
	inflight sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

func NewDispatcher(queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 100
	}
	if workers <= 0 {
		workers = 1
	}

	d := &Dispatcher{queue: make(chan Job, queueSize)}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.queue {
		d.run(job)
	}
}

func (d *Dispatcher) run(job Job) {
	defer d.inflight.Done()

	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "background job panicked", "job", job.Name, "panic", r, logging.PriorityCritical())
		}
	}()

	job.Run(ctx)
}

// Submit queues fn. ctx is detached from its deadline so the job can
// outlive the request that produced it.
func (d *Dispatcher) Submit(ctx context.Context, name string, fn func(ctx context.Context)) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	job := Job{Name: name, Ctx: logging.Detach(ctx), Run: fn}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		slog.WarnContext(ctx, "dispatcher closed, dropping job", "job", name)
		return false
	}

	d.inflight.Add(1)
	select {
	case d.queue <- job:
		return true
	default:
		d.inflight.Done()
		slog.WarnContext(ctx, "dispatch queue full, dropping job", "job", name)
		return false
	}
}

// Flush blocks until every queued job has finished, including jobs that
// those jobs submitted.
func (d *Dispatcher) Flush() {
	d.inflight.Wait()
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}
