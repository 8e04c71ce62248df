package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elan-api/internal/models"
	appErrors "github.com/noah-isme/elan-api/pkg/errors"
	"github.com/noah-isme/elan-api/pkg/logger"
	"github.com/noah-isme/elan-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// ContextActorKey is the gin context key storing the resolved models.Actor.
const ContextActorKey = "currentActor"

// TokenValidator verifies access tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// ActorResolver turns verified claims into an actor with capabilities.
type ActorResolver interface {
	ResolveActor(ctx context.Context, claims *models.JWTClaims) (models.Actor, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(tokens TokenValidator, actors ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			response.Abort(c, err)
			return
		}

		actor, err := actors.ResolveActor(c.Request.Context(), claims)
		if err != nil {
			response.Abort(c, err)
			return
		}

		setIdentity(c, claims, actor)
		c.Next()
	}
}

// OptionalJWT attaches an identity when a valid token is present but never blocks.
// Requests without one continue as anonymous.
func OptionalJWT(tokens TokenValidator, actors ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}

		actor, err := actors.ResolveActor(c.Request.Context(), claims)
		if err != nil {
			c.Next()
			return
		}

		setIdentity(c, claims, actor)
		c.Next()
	}
}

// ActorFromContext returns the actor resolved for this request, or models.Anonymous.
func ActorFromContext(c *gin.Context) models.Actor {
	value, exists := c.Get(ContextActorKey)
	if !exists {
		return models.Anonymous
	}
	actor, ok := value.(models.Actor)
	if !ok {
		return models.Anonymous
	}
	return actor
}

func setIdentity(c *gin.Context, claims *models.JWTClaims, actor models.Actor) {
	c.Set(ContextUserKey, claims)
	c.Set(ContextActorKey, actor)
	c.Set(logger.ActorKey, actor.ID)
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
