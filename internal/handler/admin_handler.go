package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elan-api/internal/dto"
	"github.com/noah-isme/elan-api/internal/models"
	"github.com/noah-isme/elan-api/internal/service"
	"github.com/noah-isme/elan-api/pkg/response"
)

type moderationService interface {
	ListModeration(ctx context.Context, actor models.Actor, status string, filter dto.ListingFilter) (*service.ListingResult, error)
	Approve(ctx context.Context, actor models.Actor, id string) (*models.Listing, error)
	Reject(ctx context.Context, actor models.Actor, id string) (*models.Listing, error)
}

type listingExporter interface {
	Export(ctx context.Context, actor models.Actor, req dto.ExportRequest) (*dto.ExportFile, error)
}

// AdminHandler exposes the moderation queue.
type AdminHandler struct {
	moderation moderationService
	exporter   listingExporter
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(moderation moderationService, exporter listingExporter) *AdminHandler {
	return &AdminHandler{moderation: moderation, exporter: exporter}
}

// Queue godoc
// @Summary Moderation queue
// @Description Pending listings by default; status=approved|rejected|all widens the view
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param search query string false "Search"
// @Param category query string false "Category"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/listings [get]
func (h *AdminHandler) Queue(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	result, err := h.moderation.ListModeration(c.Request.Context(), actorFromContext(c), status, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination)
}

// Approve godoc
// @Summary Approve a pending listing
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope "no identity"
// @Failure 403 {object} response.Envelope "signed in without the admin capability"
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/listings/{id}/approve [post]
func (h *AdminHandler) Approve(c *gin.Context) {
	listing, err := h.moderation.Approve(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, listing, nil)
}

// Reject godoc
// @Summary Reject a pending listing
// @Description The listing is kept with status rejected
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope "no identity"
// @Failure 403 {object} response.Envelope "signed in without the admin capability"
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/listings/{id}/reject [post]
func (h *AdminHandler) Reject(c *gin.Context) {
	listing, err := h.moderation.Reject(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, listing, nil)
}

// Export godoc
// @Summary Export listings
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Param status query string false "pending (default), approved, rejected or all"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/listings/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	req := dto.ExportRequest{
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Format: c.Query("format"),
	}
	file, err := h.exporter.Export(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
