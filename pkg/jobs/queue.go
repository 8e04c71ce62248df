package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by TryEnqueue when the buffer has no room.
	ErrQueueFull = errors.New("queue full")
	// ErrQueueStopped is returned when the queue is not accepting work.
	ErrQueueStopped = errors.New("queue stopped")
)

// Job represents a queued background task.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Enqueued time.Time
}

// Handler processes a job. The context carries the per-job timeout.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	JobTimeout time.Duration
	// OnResult is called after every job with the handler's error (nil on success).
	OnResult func(Job, error)
	Logger   *zap.Logger
}

// Queue is a bounded in-memory dispatcher; jobs are executed at most once.
type Queue struct {
	name       string
	handler    Handler
	workers    int
	jobTimeout time.Duration
	onResult   func(Job, error)
	logger     *zap.Logger

	jobs   chan Job
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	running bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		jobTimeout: cfg.JobTimeout,
		onResult:   cfg.OnResult,
		logger:     cfg.Logger,
		jobs:       make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Calling it twice is a no-op. Workers keep the values of ctx
// but not its cancellation: they run until Stop has drained the buffer.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q.cancel = cancel
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(workerCtx)
	}
	q.running = true
	q.logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.workers))
}

// Stop stops accepting work, drains what is buffered and waits for workers to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	q.cancel()
	q.logger.Info("queue stopped", zap.String("queue", q.name))
}

// TryEnqueue hands the job to a worker without blocking the caller.
func (q *Queue) TryEnqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return fmt.Errorf("%s: %w", q.name, ErrQueueStopped)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for job := range q.jobs {
		q.run(ctx, job)
	}
}

func (q *Queue) run(ctx context.Context, job Job) {
	jobCtx := ctx
	if q.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, q.jobTimeout)
		defer cancel()
	}

	err := q.handler(jobCtx, job)
	if err != nil {
		q.logger.Warn("job failed",
			zap.String("queue", q.name),
			zap.String("job_id", job.ID),
			zap.String("type", job.Type),
			zap.Error(err),
		)
	}
	if q.onResult != nil {
		q.onResult(job, err)
	}
}
