package identity

import (
	"context"
	"errors"
	"time"

	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/infrastructure/auth"
	"github.com/orders/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// TokenService issues and validates access tokens
type TokenService interface {
	GenerateToken(userID uint64, userType identity.UserType) (*auth.IssuedToken, error)
	ValidateToken(tokenString string) (*auth.Claims, error)
	Expiration() time.Duration
}

// AuthService handles login, token authentication and logout
type AuthService struct {
	userRepo  identity.UserRepository
	tokens    TokenService
	blacklist auth.TokenBlacklist
	now       func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	tokens TokenService,
	blacklist auth.TokenBlacklist,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		blacklist: blacklist,
		now:       time.Now,
	}
}

// Login checks the credentials of a confirmed account and issues an access token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := logger.L(ctx)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Info("Login with unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(password) {
		log.Warn("Invalid password attempt", zap.Uint64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		log.Info("Login attempt for unconfirmed account", zap.Uint64("user_id", user.ID))
		return nil, ErrAccountInactive
	}

	issued, err := s.tokens.GenerateToken(user.ID, user.Type)
	if err != nil {
		log.Error("Failed to generate access token", zap.Error(err))
		return nil, err
	}

	log.Info("User logged in", zap.Uint64("user_id", user.ID), zap.String("user_type", string(user.Type)))
	return &LoginResult{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		User:      ToUserDTO(user),
	}, nil
}

// Authenticate validates a bearer token and checks it was not revoked
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*Principal, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, auth.ErrTokenBlacklisted
	}

	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAtTime())
	if err != nil {
		return nil, err
	}
	if invalidated {
		return nil, auth.ErrTokenBlacklisted
	}

	p := &Principal{
		UserID:   claims.UserID,
		UserType: claims.UserType,
		TokenID:  claims.ID,
		IssuedAt: claims.IssuedAtTime(),
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// Logout revokes the presented token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, p *Principal) error {
	ttl := p.ExpiresAt.Sub(s.now())
	if err := s.blacklist.AddToBlacklist(ctx, p.TokenID, ttl); err != nil {
		return err
	}
	logger.L(ctx).Info("User logged out", zap.Uint64("user_id", p.UserID))
	return nil
}
