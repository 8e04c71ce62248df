package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elan-api/pkg/catalog"
	"github.com/noah-isme/elan-api/pkg/response"
)

// CatalogHandler serves the listing vocabularies.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	if cat == nil {
		cat = catalog.Default()
	}
	return &CatalogHandler{catalog: cat}
}

// Get godoc
// @Summary Categories, experience levels and cities
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.JSON(http.StatusOK, response.Envelope{Data: h.catalog})
}
