package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elan-api/internal/dto"
	"github.com/noah-isme/elan-api/internal/middleware"
	"github.com/noah-isme/elan-api/internal/models"
	"github.com/noah-isme/elan-api/internal/service"
	appErrors "github.com/noah-isme/elan-api/pkg/errors"
	"github.com/noah-isme/elan-api/pkg/response"
)

type listingService interface {
	Create(ctx context.Context, actor models.Actor, payload dto.ListingPayload) (*models.Listing, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Listing, error)
	ListPublic(ctx context.Context, actor models.Actor, filter dto.ListingFilter) (*service.ListingResult, error)
	ListMine(ctx context.Context, actor models.Actor, filter dto.ListingFilter) (*service.ListingResult, error)
	Update(ctx context.Context, actor models.Actor, id string, payload dto.ListingPayload) (*models.Listing, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// ListingHandler exposes listing browsing and owner operations.
type ListingHandler struct {
	service listingService
}

// NewListingHandler constructs the handler.
func NewListingHandler(svc listingService) *ListingHandler {
	return &ListingHandler{service: svc}
}

// List godoc
// @Summary Browse approved listings
// @Tags Listings
// @Produce json
// @Param search query string false "Case-insensitive match on title or description"
// @Param category query string false "Category value or all"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /listings [get]
func (h *ListingHandler) List(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ListPublic(c.Request.Context(), actorFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, result.CacheHit)
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Listing detail
// @Description Returns a listing the caller may see and counts one view for approved listings
// @Tags Listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /listings/{id} [get]
func (h *ListingHandler) Get(c *gin.Context) {
	listing, err := h.service.Get(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, listing, nil)
}

// Create godoc
// @Summary Submit a listing for moderation
// @Tags Listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ListingPayload true "Listing"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /listings [post]
func (h *ListingHandler) Create(c *gin.Context) {
	var payload dto.ListingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid listing payload"))
		return
	}

	listing, err := h.service.Create(c.Request.Context(), actorFromContext(c), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, listing)
}

// Update godoc
// @Summary Edit a listing
// @Description Owner or admin; rejected listings cannot be edited
// @Tags Listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Param payload body dto.ListingPayload true "Listing"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /listings/{id} [put]
func (h *ListingHandler) Update(c *gin.Context) {
	var payload dto.ListingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid listing payload"))
		return
	}

	listing, err := h.service.Update(c.Request.Context(), actorFromContext(c), c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, listing, nil)
}

// Delete godoc
// @Summary Delete a listing
// @Tags Listings
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /listings/{id} [delete]
func (h *ListingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Mine godoc
// @Summary Listings submitted by the caller
// @Tags Listings
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search"
// @Param category query string false "Category"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /me/listings [get]
func (h *ListingHandler) Mine(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ListMine(c.Request.Context(), actorFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination)
}
