package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/elan-api/pkg/jobs"
)

const viewJobType = "listing.view"

type viewStore interface {
	IncrementViews(ctx context.Context, id string) error
}

// ViewRecorder accepts one view of a listing without blocking the caller.
type ViewRecorder interface {
	Record(listingID string)
}

// ViewCounterConfig sizes the increment worker pool.
type ViewCounterConfig struct {
	Workers int
	Buffer  int
	Timeout time.Duration
}

// ViewCounter applies view increments in the background. Each access is one increment;
// failed increments are logged and counted, never retried.
type ViewCounter struct {
	queue   *jobs.Queue
	store   viewStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewViewCounter wires the worker queue. Call Start before recording.
func NewViewCounter(store viewStore, metrics *MetricsService, logger *zap.Logger, cfg ViewCounterConfig) *ViewCounter {
	if logger == nil {
		logger = zap.NewNop()
	}
	vc := &ViewCounter{store: store, metrics: metrics, logger: logger}
	vc.queue = jobs.NewQueue("listing-views", vc.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.Buffer,
		JobTimeout: cfg.Timeout,
		OnResult:   vc.onResult,
		Logger:     logger,
	})
	return vc
}

// Start launches the workers.
func (v *ViewCounter) Start(ctx context.Context) {
	v.queue.Start(ctx)
}

// Stop drains pending increments and stops the workers.
func (v *ViewCounter) Stop() {
	v.queue.Stop()
}

// Record enqueues one increment. A full or stopped queue drops the view.
func (v *ViewCounter) Record(listingID string) {
	err := v.queue.TryEnqueue(jobs.Job{ID: listingID, Type: viewJobType, Payload: listingID})
	if err != nil {
		v.metrics.RecordViewIncrement(ViewResultDropped)
		v.logger.Warn("view increment dropped", zap.String("listing_id", listingID), zap.Error(err))
	}
}

func (v *ViewCounter) handle(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(string)
	if !ok || id == "" {
		return fmt.Errorf("view job %s: unexpected payload %T", job.ID, job.Payload)
	}
	return v.store.IncrementViews(ctx, id)
}

func (v *ViewCounter) onResult(job jobs.Job, err error) {
	switch {
	case err == nil:
		v.metrics.RecordViewIncrement(ViewResultApplied)
	case errors.Is(err, sql.ErrNoRows):
		v.metrics.RecordViewIncrement(ViewResultNotFound)
	default:
		v.metrics.RecordViewIncrement(ViewResultFailed)
	}
}
