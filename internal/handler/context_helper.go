package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elan-api/internal/dto"
	"github.com/noah-isme/elan-api/internal/middleware"
	"github.com/noah-isme/elan-api/internal/models"
	appErrors "github.com/noah-isme/elan-api/pkg/errors"
)

func actorFromContext(c *gin.Context) models.Actor {
	return middleware.ActorFromContext(c)
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// filterFromQuery reads search, category, page and page_size.
func filterFromQuery(c *gin.Context) (dto.ListingFilter, error) {
	filter := dto.ListingFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Category: strings.TrimSpace(c.Query("category")),
	}
	var err error
	if filter.Page, err = intQuery(c, "page"); err != nil {
		return filter, err
	}
	if filter.PageSize, err = intQuery(c, "page_size"); err != nil {
		return filter, err
	}
	return filter, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, appErrors.Validation(key, "must be a non-negative integer")
	}
	return v, nil
}
