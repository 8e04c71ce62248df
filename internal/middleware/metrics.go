package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elan-api/internal/service"
)

// unmatchedRoute labels requests that hit no registered route, keeping scanner noise
// from minting one series per raw URL.
const unmatchedRoute = "unmatched"

// Metrics observes every request under its route template, e.g. /api/v1/listings/:id.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
