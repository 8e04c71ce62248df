package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type countingViewStore struct {
	mu     sync.Mutex
	counts map[string]int
	errFor map[string]error
}

func (s *countingViewStore) IncrementViews(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errFor[id]; err != nil {
		return err
	}
	if s.counts == nil {
		s.counts = make(map[string]int)
	}
	s.counts[id]++
	return nil
}

func TestViewCounterAppliesEveryAccess(t *testing.T) {
	store := &countingViewStore{}
	metrics := NewMetricsService()
	vc := NewViewCounter(store, metrics, nil, ViewCounterConfig{Workers: 4, Buffer: 100, Timeout: time.Second})
	vc.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vc.Record("l1")
		}()
	}
	wg.Wait()
	vc.Stop()

	assert.Equal(t, 50, store.counts["l1"])
	assert.Equal(t, float64(50), testutil.ToFloat64(metrics.viewIncrements.WithLabelValues(ViewResultApplied)))
}

func TestViewCounterCountsFailuresWithoutRetry(t *testing.T) {
	store := &countingViewStore{errFor: map[string]error{
		"broken": errors.New("deadlock detected"),
		"gone":   sql.ErrNoRows,
	}}
	metrics := NewMetricsService()
	vc := NewViewCounter(store, metrics, nil, ViewCounterConfig{Workers: 1, Buffer: 10})
	vc.Start(context.Background())

	vc.Record("broken")
	vc.Record("gone")
	vc.Stop()

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.viewIncrements.WithLabelValues(ViewResultFailed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.viewIncrements.WithLabelValues(ViewResultNotFound)))
}

func TestViewCounterDropsWhenStopped(t *testing.T) {
	store := &countingViewStore{}
	metrics := NewMetricsService()
	vc := NewViewCounter(store, metrics, nil, ViewCounterConfig{})

	vc.Record("l1")

	assert.Empty(t, store.counts)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.viewIncrements.WithLabelValues(ViewResultDropped)))
}

type gatedViewStore struct {
	gate    chan struct{}
	mu      sync.Mutex
	applied int
	failed  int
}

func (s *gatedViewStore) IncrementViews(ctx context.Context, id string) error {
	<-s.gate
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		s.failed++
		return err
	}
	s.applied++
	return nil
}

func TestViewCounterDrainsAfterShutdownSignal(t *testing.T) {
	store := &gatedViewStore{gate: make(chan struct{})}
	metrics := NewMetricsService()
	vc := NewViewCounter(store, metrics, nil, ViewCounterConfig{Workers: 1, Buffer: 32, Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	vc.Start(ctx)
	for i := 0; i < 20; i++ {
		vc.Record("l1")
	}

	cancel()
	close(store.gate)
	vc.Stop()

	assert.Equal(t, 20, store.applied)
	assert.Zero(t, store.failed)
	assert.Equal(t, float64(20), testutil.ToFloat64(metrics.viewIncrements.WithLabelValues(ViewResultApplied)))
}
