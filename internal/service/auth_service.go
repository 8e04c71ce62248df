package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/elan-api/internal/models"
	appErrors "github.com/noah-isme/elan-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type adminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
	ForgetAdmin(ctx context.Context, userID string)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Issuer             string
	SingleSession      bool
}

// AuthService provides authentication use cases.
type AuthService struct {
	repo      authUserRepository
	admins    adminChecker
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, admins adminChecker, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, admins: admins, validator: validate, logger: logger, config: config, now: func() time.Time { return time.Now().UTC() }}
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.TokenPair, error) {
	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Unavailable(err, "failed to check existing account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, appErrors.Unavailable(err, "failed to create account")
	}

	s.audit(ctx, user.ID, models.AuditActionRegister, `{"status":"created"}`, req.IP, req.UserAgent)

	return s.issueTokens(ctx, user, req.IP, req.UserAgent)
}

// Login authenticates a user and returns issued tokens.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Unavailable(err, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	// A fresh sign-in always re-reads the role instead of trusting the cached flag.
	if s.admins != nil {
		s.admins.ForgetAdmin(ctx, user.ID)
	}

	if s.config.SingleSession {
		if err := s.repo.RevokeUserRefreshTokens(ctx, user.ID); err != nil {
			s.logger.Warn("failed to revoke previous refresh tokens", zap.Error(err))
		}
	}

	pair, err := s.issueTokens(ctx, user, req.IP, req.UserAgent)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, user.ID, models.AuditActionLogin, `{"status":"success"}`, req.IP, req.UserAgent)
	return pair, nil
}

// Refresh exchanges a refresh token for a new token pair. The used token is revoked.
func (s *AuthService) Refresh(ctx context.Context, req models.RefreshTokenRequest) (*models.TokenPair, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid refresh payload")
	}

	storedToken, err := s.repo.FindRefreshToken(ctx, hashToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
		}
		return nil, appErrors.Unavailable(err, "failed to fetch refresh token")
	}

	if storedToken.Revoked || s.now().After(storedToken.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is expired or revoked")
	}

	user, err := s.repo.FindByID(ctx, storedToken.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "associated user no longer exists")
		}
		return nil, appErrors.Unavailable(err, "failed to load user")
	}

	if err := s.repo.RevokeRefreshToken(ctx, storedToken.ID, s.now()); err != nil {
		s.logger.Warn("failed to revoke used refresh token", zap.Error(err))
	}

	return s.issueTokens(ctx, user, req.IP, req.UserAgent)
}

// Logout revokes the provided refresh token for userID.
func (s *AuthService) Logout(ctx context.Context, userID string, req models.RefreshTokenRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid logout payload")
	}

	storedToken, err := s.repo.FindRefreshToken(ctx, hashToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
		}
		return appErrors.Unavailable(err, "failed to load refresh token")
	}

	if storedToken.UserID != userID {
		return appErrors.Clone(appErrors.ErrForbidden, "token does not belong to user")
	}

	if err := s.repo.RevokeRefreshToken(ctx, storedToken.ID, s.now()); err != nil {
		return appErrors.Unavailable(err, "failed to revoke refresh token")
	}

	s.audit(ctx, userID, models.AuditActionLogout, `{"status":"logout"}`, req.IP, req.UserAgent)
	return nil
}

// Me returns the profile of the authenticated user including the admin flag.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Unavailable(err, "failed to load user")
	}
	return s.userInfo(ctx, user)
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, ip, userAgent string) (*models.TokenPair, error) {
	issuedAt := s.now()
	accessToken, err := s.generateAccessToken(user, issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	refreshValue, err := generateRefreshTokenString()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}

	refreshToken := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshValue),
		ExpiresAt: issuedAt.Add(s.config.RefreshTokenExpiry),
		CreatedAt: issuedAt,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.repo.CreateRefreshToken(ctx, refreshToken); err != nil {
		return nil, appErrors.Unavailable(err, "failed to persist refresh token")
	}

	info, err := s.userInfo(ctx, user)
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshValue,
		ExpiresIn:    int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:     issuedAt,
		User:         info,
	}, nil
}

func (s *AuthService) userInfo(ctx context.Context, user *models.User) (*models.UserInfo, error) {
	info := &models.UserInfo{ID: user.ID, Email: user.Email, FullName: user.FullName, AvatarURL: user.AvatarURL}
	if s.admins != nil {
		admin, err := s.admins.IsAdmin(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		info.IsAdmin = admin
	}
	return info, nil
}

func (s *AuthService) generateAccessToken(user *models.User, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

func (s *AuthService) audit(ctx context.Context, userID, action, values, ip, userAgent string) {
	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "auth",
		ResourceID: &userID,
		NewValues:  []byte(values),
		IPAddress:  ip,
		UserAgent:  userAgent,
	}); err != nil {
		s.logger.Warn("failed to record auth audit log", zap.String("action", action), zap.Error(err))
	}
}

func generateRefreshTokenString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
