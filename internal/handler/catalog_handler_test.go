package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elan-api/internal/service"
)

func TestCatalogHandlerServesVocabularies(t *testing.T) {
	handler := NewCatalogHandler(nil)

	c, rec := newTestContext(http.MethodGet, "/catalog", "", nil)
	handler.Get(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "study_abroad")
}

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

func TestMetricsHandlerReady(t *testing.T) {
	handler := NewMetricsHandler(service.NewMetricsService(), stubPinger{})
	c, rec := newTestContext(http.MethodGet, "/readyz", "", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	handler = NewMetricsHandler(nil, stubPinger{err: errors.New("connection refused")})
	c, rec = newTestContext(http.MethodGet, "/readyz", "", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordViewIncrement(service.ViewResultApplied)
	handler := NewMetricsHandler(metrics, nil)

	c, rec := newTestContext(http.MethodGet, "/metrics", "", nil)
	handler.Prometheus(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "listing_view_increments_total")

	handler = NewMetricsHandler(nil, nil)
	c, rec = newTestContext(http.MethodGet, "/metrics", "", nil)
	handler.Prometheus(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
