package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/elan-api/internal/models"
)

// AuditWriter persists audit log entries.
type AuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Audit records an audit log entry after every successful request on the route.
func Audit(writer AuditWriter, logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var userID *string
		if actor := ActorFromContext(c); actor.Authenticated() {
			userID = &actor.ID
		}

		body, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"query":   c.Request.URL.RawQuery,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		if err := writer.CreateAuditLog(c.Request.Context(), &models.AuditLog{
			UserID:    userID,
			Action:    action,
			Resource:  resource,
			NewValues: body,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			CreatedAt: start,
		}); err != nil {
			logger.Warn("failed to record request audit log", zap.String("action", action), zap.Error(err))
		}
	}
}
