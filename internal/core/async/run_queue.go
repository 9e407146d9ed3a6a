package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/core"
)

// RunQueue extracts submitted directories in the background. Results land in
// run history, keyed by the job's run ID.
type RunQueue struct {
	proc       *core.Processor
	logger     *slog.Logger
	workers    int
	timeout    time.Duration
	skipHidden bool

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// done is closed by Shutdown to release enqueuers waiting on a full
	// channel. ch is only closed once senders has drained.
	done    chan struct{}
	senders sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

type Option func(*RunQueue)

func WithWorkers(n int) Option {
	return func(q *RunQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *RunQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithRunTimeout(d time.Duration) Option {
	return func(q *RunQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithSkipHidden(skip bool) Option {
	return func(q *RunQueue) { q.skipHidden = skip }
}

// NewRunQueue starts the workers. Each run already fans its pages out over the
// OCR pool, so one worker is the default.
func NewRunQueue(proc *core.Processor, logger *slog.Logger, opts ...Option) *RunQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &RunQueue{
		proc:       proc,
		logger:     logger,
		workers:    1,
		timeout:    15 * time.Minute,
		skipHidden: true,
		ch:         make(chan Job, 64),
		done:       make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *RunQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.process(workerID, job)
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *RunQueue) process(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if job.RunID != "" {
		ctx = common.WithRunID(ctx, job.RunID)
	}

	res, _, err := q.proc.RunDirectory(ctx, job.RootPath, q.skipHidden, job.Overrides)
	if err != nil {
		q.logger.Error("run failed", "worker_id", workerID, "run_id", job.RunID, "root", job.RootPath, "error", err)
		return
	}
	q.logger.Info("run completed",
		"worker_id", workerID,
		"run_id", res.RunID,
		"status", res.Status,
		"queued_ms", time.Since(job.SubmittedAt).Milliseconds(),
	)
}

func (q *RunQueue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "root", job.RootPath)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.mu.Unlock()
		q.logger.Info("queued directory for extraction", "run_id", job.RunID, "root", job.RootPath)
		return nil
	default:
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	q.logger.Warn("queue full, applying backpressure", "run_id", job.RunID)
	select {
	case q.ch <- job:
		q.logger.Info("queued directory for extraction", "run_id", job.RunID, "root", job.RootPath)
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued runs until ctx ends. Enqueue
// calls blocked on a full queue return ErrQueueClosed.
func (q *RunQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	q.senders.Wait()
	close(q.ch)

	drained := make(chan struct{})
	go func() { defer close(drained); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-drained:
		q.logger.Info("queue drained, shutdown complete")
	}
}
