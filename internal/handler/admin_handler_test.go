package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elan-api/internal/dto"
	"github.com/noah-isme/elan-api/internal/models"
	"github.com/noah-isme/elan-api/internal/service"
	appErrors "github.com/noah-isme/elan-api/pkg/errors"
)

type fakeModerationSrv struct {
	result     *service.ListingResult
	listing    *models.Listing
	err        error
	lastStatus string
	lastID     string
	calls      []string
}

func (f *fakeModerationSrv) ListModeration(_ context.Context, _ models.Actor, status string, _ dto.ListingFilter) (*service.ListingResult, error) {
	f.lastStatus = status
	return f.result, f.err
}

func (f *fakeModerationSrv) Approve(_ context.Context, _ models.Actor, id string) (*models.Listing, error) {
	f.lastID = id
	f.calls = append(f.calls, "approve")
	return f.listing, f.err
}

func (f *fakeModerationSrv) Reject(_ context.Context, _ models.Actor, id string) (*models.Listing, error) {
	f.lastID = id
	f.calls = append(f.calls, "reject")
	return f.listing, f.err
}

type fakeExporter struct {
	file *dto.ExportFile
	err  error
	last dto.ExportRequest
}

func (f *fakeExporter) Export(_ context.Context, _ models.Actor, req dto.ExportRequest) (*dto.ExportFile, error) {
	f.last = req
	return f.file, f.err
}

var moderator = models.Actor{ID: "admin-1", Email: "admin@example.com", Admin: true}

func TestAdminHandlerQueueDefaultsToPending(t *testing.T) {
	srv := &fakeModerationSrv{result: &service.ListingResult{Pagination: models.Pagination{Page: 1, PageSize: 20}}}
	handler := NewAdminHandler(srv, &fakeExporter{})

	c, rec := newTestContext(http.MethodGet, "/admin/listings", "", &moderator)
	handler.Queue(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", srv.lastStatus)
}

func TestAdminHandlerQueueNormalisesStatus(t *testing.T) {
	srv := &fakeModerationSrv{result: &service.ListingResult{}}
	handler := NewAdminHandler(srv, &fakeExporter{})

	c, rec := newTestContext(http.MethodGet, "/admin/listings?status=%20ALL%20", "", &moderator)
	handler.Queue(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "all", srv.lastStatus)
}

func TestAdminHandlerApprove(t *testing.T) {
	srv := &fakeModerationSrv{listing: &models.Listing{ID: "l-1", Status: models.StatusApproved}}
	handler := NewAdminHandler(srv, &fakeExporter{})

	c, rec := newTestContext(http.MethodPost, "/admin/listings/l-1/approve", "", &moderator)
	c.Params = gin.Params{{Key: "id", Value: "l-1"}}
	handler.Approve(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"approve"}, srv.calls)
	assert.Contains(t, rec.Body.String(), `"status":"approved"`)
}

func TestAdminHandlerRejectConflict(t *testing.T) {
	srv := &fakeModerationSrv{err: appErrors.ErrInvalidTransition}
	handler := NewAdminHandler(srv, &fakeExporter{})

	c, rec := newTestContext(http.MethodPost, "/admin/listings/l-1/reject", "", &moderator)
	c.Params = gin.Params{{Key: "id", Value: "l-1"}}
	handler.Reject(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "l-1", srv.lastID)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, envelope.Error["code"])
}

func TestAdminHandlerExportStreamsAttachment(t *testing.T) {
	exporter := &fakeExporter{file: &dto.ExportFile{
		Filename:    "listings-pending-20260101.csv",
		ContentType: "text/csv",
		Body:        []byte("id,title\n"),
	}}
	handler := NewAdminHandler(&fakeModerationSrv{}, exporter)

	c, rec := newTestContext(http.MethodGet, "/admin/listings/export?format=csv&status=Approved", "", &moderator)
	handler.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.ExportRequest{Status: "approved", Format: "csv"}, exporter.last)
	assert.Equal(t, `attachment; filename="listings-pending-20260101.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "id,title\n", rec.Body.String())
}

func TestAdminHandlerExportError(t *testing.T) {
	exporter := &fakeExporter{err: appErrors.Validation("format", "unsupported export format")}
	handler := NewAdminHandler(&fakeModerationSrv{}, exporter)

	c, rec := newTestContext(http.MethodGet, "/admin/listings/export?format=xlsx", "", &moderator)
	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
