package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/elan-api/internal/models"
	appErrors "github.com/noah-isme/elan-api/pkg/errors"
)

type roleStore interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// IdentityService answers capability questions about authenticated users.
type IdentityService struct {
	roles  roleStore
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewIdentityService constructs an IdentityService. cache may be nil.
func NewIdentityService(roles roleStore, cache *CacheService, ttl time.Duration, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{roles: roles, cache: cache, ttl: ttl, logger: logger}
}

// IsAdmin reports whether the user holds the admin role. Cached answers are used when
// available; any cache problem falls through to the role store.
func (s *IdentityService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	key := adminFlagKeyPrefix + userID

	var cached bool
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	admin, err := s.roles.HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return false, appErrors.Unavailable(err, "failed to resolve user role")
	}

	if err := s.cache.Set(ctx, key, admin, s.ttl); err != nil {
		s.logger.Debug("admin flag not cached", zap.String("user_id", userID), zap.Error(err))
	}
	return admin, nil
}

// ForgetAdmin drops the cached admin flag for a user. Login calls it so a role change
// applies at the next sign-in instead of after the cache TTL.
func (s *IdentityService) ForgetAdmin(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, adminFlagKeyPrefix+userID); err != nil {
		s.logger.Warn("failed to drop cached admin flag", zap.String("user_id", userID), zap.Error(err))
	}
}

// ResolveActor builds the per-request actor from verified token claims.
func (s *IdentityService) ResolveActor(ctx context.Context, claims *models.JWTClaims) (models.Actor, error) {
	if claims == nil || claims.UserID == "" {
		return models.Anonymous, nil
	}
	admin, err := s.IsAdmin(ctx, claims.UserID)
	if err != nil {
		return models.Anonymous, err
	}
	return models.Actor{ID: claims.UserID, Email: claims.Email, Admin: admin}, nil
}
