package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.RecordTransition(EventApprove)
	m.RecordTransition(EventApprove)
	m.RecordViewIncrement(ViewResultDropped)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.transitions.WithLabelValues("approve")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.viewIncrements.WithLabelValues(ViewResultDropped)))
	assert.Equal(t, 0.5, testutil.ToFloat64(m.cacheHitRatio))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "listing_transitions_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordTransition(EventReject)
	m.RecordViewIncrement(ViewResultApplied)
	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
