// Package queue provides the worker pool that keeps blocking download work
// off the gateway event path.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fetchclip/fetchclip/internal/domain"
)

var (
	// ErrQueueFull is returned when the job queue is at capacity.
	ErrQueueFull = errors.New("job queue is full")
	// ErrDispatcherStopped is returned when enqueueing after Stop.
	ErrDispatcherStopped = errors.New("dispatcher has been stopped")
)

// Processor handles one job end to end: download, delivery, cleanup.
type Processor func(ctx context.Context, job *domain.Job)

// Dispatcher manages a pool of workers that process download jobs.
type Dispatcher struct {
	jobCh      chan *domain.Job
	workerWg   sync.WaitGroup
	numWorkers int
	processor  Processor
	stopped    atomic.Bool
	stopCh     chan struct{}
}

// NewDispatcher creates a Dispatcher with the given pool size and queue
// capacity.
func NewDispatcher(numWorkers, queueSize int, processor Processor) *Dispatcher {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		jobCh:      make(chan *domain.Job, queueSize),
		numWorkers: numWorkers,
		processor:  processor,
		stopCh:     make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start(ctx context.Context) {
	slog.Info("Starting dispatcher", "workers", d.numWorkers, "queue_size", cap(d.jobCh))
	for i := 0; i < d.numWorkers; i++ {
		d.workerWg.Add(1)
		go d.worker(ctx, i)
	}
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.workerWg.Done()

	for {
		select {
		case job, ok := <-d.jobCh:
			if !ok {
				return
			}
			slog.Debug("Worker processing job", "worker_id", id, "job_id", job.ID, "url", job.URL)
			d.processor(ctx, job)
		case <-ctx.Done():
			return
		case <-d.stopCh:
			return
		}
	}
}

// Enqueue adds a job without blocking. Returns ErrQueueFull at capacity.
func (d *Dispatcher) Enqueue(job *domain.Job) error {
	if d.stopped.Load() {
		return ErrDispatcherStopped
	}

	select {
	case d.jobCh <- job:
		slog.Debug("Job enqueued", "job_id", job.ID, "queue_size", len(d.jobCh))
		return nil
	default:
		slog.Warn("Queue is full", "job_id", job.ID, "queue_size", len(d.jobCh))
		return ErrQueueFull
	}
}

// Stop drains the pool: no new jobs are accepted and all workers are waited
// for.
func (d *Dispatcher) Stop() {
	if d.stopped.Swap(true) {
		return
	}

	slog.Info("Stopping dispatcher...")
	close(d.stopCh)
	close(d.jobCh)
	d.workerWg.Wait()
	slog.Info("Dispatcher stopped")
}

// QueueSize returns the number of jobs currently waiting.
func (d *Dispatcher) QueueSize() int {
	return len(d.jobCh)
}

// WorkerCount returns the pool size.
func (d *Dispatcher) WorkerCount() int {
	return d.numWorkers
}
