package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/inkwell-labs/inkwell/internal/token"
	"github.com/inkwell-labs/inkwell/internal/user"
	apperrors "github.com/inkwell-labs/inkwell/pkg/errors"
	"go.uber.org/zap"
)

// UserRepository is the user lookup boundary the service depends on.
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash, name string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByID(ctx context.Context, id int) (*user.User, error)
	UpdateLastLoginAt(ctx context.Context, userID int) error
}

// RateLimiter interface for login rate limiting
type RateLimiter interface {
	CheckLoginAttempt(ctx context.Context, email, ipAddress string) (allowed bool, remaining int, lockoutRemaining time.Duration, err error)
	RecordFailedAttempt(ctx context.Context, email, ipAddress string) error
	RecordSuccessfulAttempt(ctx context.Context, email, ipAddress string) error
}

// Service orchestrates authentication: credential checks, claims mapping,
// token signing and refresh token lifecycle.
type Service struct {
	users       UserRepository
	mapper      *token.Mapper
	signer      *token.Signer
	parser      token.Parser
	refresh     *token.RefreshManager
	rateLimiter RateLimiter
	logger      *zap.Logger
	now         token.Clock
}

// NewService creates a new authentication service. rateLimiter may be nil.
func NewService(
	users UserRepository,
	mapper *token.Mapper,
	signer *token.Signer,
	parser token.Parser,
	refresh *token.RefreshManager,
	rateLimiter RateLimiter,
	logger *zap.Logger,
	now token.Clock,
) *Service {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:       users,
		mapper:      mapper,
		signer:      signer,
		parser:      parser,
		refresh:     refresh,
		rateLimiter: rateLimiter,
		logger:      logger,
		now:         now,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token *token.TokenPair `json:"token"`
	User  *user.User       `json:"user"`
}

// Register creates a new user account.
func (s *Service) Register(ctx context.Context, email, password, name string) (*user.User, error) {
	email = SanitizeEmail(email)

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, email, hash, name)
	if errors.Is(err, user.ErrEmailTaken) {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Login authenticates email/password credentials and issues a token pair.
// An unknown email and a wrong password fail with the same error so the two
// cases cannot be told apart by a caller.
func (s *Service) Login(ctx context.Context, email, password, ipAddress string) (*LoginResponse, error) {
	email = SanitizeEmail(email)

	if s.rateLimiter != nil {
		allowed, _, lockoutRemaining, err := s.rateLimiter.CheckLoginAttempt(ctx, email, ipAddress)
		if err != nil {
			s.logger.Warn("rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			s.logger.Info("login locked out",
				zap.String("ip", ipAddress),
				zap.Duration("remaining", lockoutRemaining),
			)
			return nil, apperrors.ErrRateLimitExceeded
		}
	}

	usr, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if usr == nil {
		s.recordFailure(ctx, email, ipAddress)
		return nil, apperrors.ErrInvalidCredential
	}

	if err := VerifyPassword(password, usr.PasswordHash); err != nil {
		s.recordFailure(ctx, email, ipAddress)
		return nil, apperrors.ErrInvalidCredential
	}

	if s.rateLimiter != nil {
		_ = s.rateLimiter.RecordSuccessfulAttempt(ctx, email, ipAddress)
	}
	if err := s.users.UpdateLastLoginAt(ctx, usr.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	pair, err := s.issueTokens(ctx, strconv.Itoa(usr.ID), usr.Email)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Token: pair, User: usr}, nil
}

// Refresh rotates a refresh token and mints a fresh access token for the
// same subject. Reuse of an already-rotated token is surfaced as a distinct
// security error.
func (s *Service) Refresh(ctx context.Context, refreshTokenID string) (*token.TokenPair, error) {
	rotated, err := s.refresh.Rotate(ctx, refreshTokenID)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrRefreshTokenReused):
			s.logger.Warn("refresh token reuse detected", zap.String("token_id", refreshTokenID))
			return nil, apperrors.ErrTokenReused
		case errors.Is(err, token.ErrRefreshTokenRevoked):
			return nil, apperrors.ErrTokenRevoked
		case errors.Is(err, token.ErrRefreshTokenExpired):
			return nil, apperrors.ErrTokenExpired
		case errors.Is(err, token.ErrRefreshTokenNotFound):
			return nil, apperrors.ErrUnauthorized
		default:
			return nil, err
		}
	}

	claims := s.mapper.Map(rotated.User.ID, rotated.User.Email)
	access, err := s.signer.Sign(claims)
	if err != nil {
		return nil, err
	}

	return token.NewTokenPair(access, rotated.ID), nil
}

// Logout invalidates a refresh token. Idempotent: logging out with an
// unknown or already-invalid token succeeds.
func (s *Service) Logout(ctx context.Context, refreshTokenID string) error {
	return s.refresh.Invalidate(ctx, refreshTokenID)
}

// ValidateAccessToken parses the token and applies validity-window policy.
// Parsing itself never checks expiry; that comparison happens here against
// the injected clock.
func (s *Service) ValidateAccessToken(tokenString string) (token.Claims, error) {
	claims, err := s.parser.Parse(tokenString)
	if err != nil {
		return token.Claims{}, apperrors.ErrFailedDecoding
	}

	now := s.now()
	if claims.ExpiredAt.Equal(token.InvalidDate) || now.After(claims.ExpiredAt) {
		return token.Claims{}, apperrors.ErrTokenExpired
	}
	if !claims.NotBeforeAt.Equal(token.InvalidDate) && now.Before(claims.NotBeforeAt) {
		return token.Claims{}, apperrors.ErrUnauthorized
	}

	return claims, nil
}

// CurrentUser loads the user a validated token belongs to.
func (s *Service) CurrentUser(ctx context.Context, claims token.Claims) (*user.User, error) {
	id, err := strconv.Atoi(claims.User.ID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	usr, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if usr == nil {
		return nil, apperrors.ErrNotFound
	}
	return usr, nil
}

func (s *Service) recordFailure(ctx context.Context, email, ipAddress string) {
	if s.rateLimiter != nil {
		_ = s.rateLimiter.RecordFailedAttempt(ctx, email, ipAddress)
	}
}

// issueTokens runs the issuance pipeline: refresh token first, then claims,
// then the signed access token.
func (s *Service) issueTokens(ctx context.Context, userID, email string) (*token.TokenPair, error) {
	refreshRecord, err := s.refresh.Create(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	claims := s.mapper.Map(userID, email)
	access, err := s.signer.Sign(claims)
	if err != nil {
		return nil, err
	}

	return token.NewTokenPair(access, refreshRecord.ID), nil
}
