package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	appidentity "github.com/orders/backend/internal/application/identity"
	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/infrastructure/auth"
	"github.com/orders/backend/internal/infrastructure/logger"
	"github.com/orders/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys and header prefixes
const (
	PrincipalKey  = "principal"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	TokenPrefix   = "Token "
)

// Authenticator resolves a bearer token into the calling principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*appidentity.Principal, error)
}

// AuthConfig holds configuration for the auth middleware
type AuthConfig struct {
	Authenticator Authenticator
	Logger        *zap.Logger
}

// RequireAuth rejects requests without a valid, unrevoked token with 401
// and stores the principal for downstream handlers.
func RequireAuth(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		token := extractToken(c.GetHeader(AuthHeaderKey))
		if token == "" {
			abortUnauthorized(c, dto.CodeUnauthorized, "Log in required")
			return
		}

		principal, err := cfg.Authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			code, message := authFailure(err)
			if code == dto.CodeInternal {
				log.Error("Token check failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
				return
			}
			log.Debug("Authentication rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
			abortUnauthorized(c, code, message)
			return
		}

		c.Set(PrincipalKey, principal)
		ctx := logger.WithUserID(c.Request.Context(), principal.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireUserType rejects principals of another account type with 403.
// It must run after RequireAuth.
func RequireUserType(userType identity.UserType) gin.HandlerFunc {
	message := "Only for " + string(userType) + " accounts"
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil {
			abortUnauthorized(c, dto.CodeUnauthorized, "Log in required")
			return
		}
		if p.UserType != userType {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.CodeForbidden, message, GetRequestID(c)))
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller or nil
func GetPrincipal(c *gin.Context) *appidentity.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(*appidentity.Principal); ok {
			return p
		}
	}
	return nil
}

// extractToken accepts "Bearer <jwt>" and the "Token <jwt>" form older clients send
func extractToken(header string) string {
	for _, prefix := range []string{BearerPrefix, TokenPrefix} {
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(header, prefix))
		}
	}
	return ""
}

func authFailure(err error) (code, message string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.CodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return dto.CodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingUserID):
		return dto.CodeTokenInvalid, "Invalid token"
	default:
		return dto.CodeInternal, "An unexpected error occurred"
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="orders"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
