package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/elan-api/pkg/errors"
	"github.com/noah-isme/elan-api/pkg/response"
)

// RequireAdmin allows the request through only for actors holding the admin capability.
// It must run after JWT.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if !actor.Authenticated() {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if !actor.Admin {
			response.Abort(c, appErrors.Clone(appErrors.ErrForbidden, "admin capability required"))
			return
		}
		c.Next()
	}
}
