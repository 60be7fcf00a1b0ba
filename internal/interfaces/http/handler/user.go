package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appidentity "github.com/orders/backend/internal/application/identity"
	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/interfaces/http/dto"
)

// AccountService manages accounts and their one-time tokens
type AccountService interface {
	Register(ctx context.Context, in appidentity.RegisterInput) (*appidentity.UserDTO, error)
	Confirm(ctx context.Context, email, key string) error
	GetDetails(ctx context.Context, userID uint64) (*appidentity.UserDTO, error)
	UpdateDetails(ctx context.Context, userID uint64, in appidentity.UpdateDetailsInput) (*appidentity.UserDTO, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, email, key, password string) error
}

// SessionService issues and revokes access tokens
type SessionService interface {
	Login(ctx context.Context, email, password string) (*appidentity.LoginResult, error)
	Logout(ctx context.Context, p *appidentity.Principal) error
}

// UserHandler handles the /user endpoints
type UserHandler struct {
	BaseHandler
	accounts AccountService
	sessions SessionService
}

// NewUserHandler creates a new user handler
func NewUserHandler(accounts AccountService, sessions SessionService) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		sessions: sessions,
	}
}

// Register creates an inactive account; the confirmation token goes out by mail
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	_, err := h.accounts.Register(c.Request.Context(), appidentity.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Company:   req.Company,
		Position:  req.Position,
		Type:      identity.UserType(req.Type),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Done(c)
}

// Confirm activates an account with the mailed token
func (h *UserHandler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.accounts.Confirm(c.Request.Context(), req.Email, req.Token); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Done(c)
}

// Login exchanges credentials of a confirmed account for an access token
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.TokenResponse{
		Status:    true,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// Logout revokes the token the request was made with
func (h *UserHandler) Logout(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), p); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Done(c)
}

// GetDetails returns the caller's account
func (h *UserHandler) GetDetails(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	user, err := h.accounts.GetDetails(c.Request.Context(), p.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, user)
}

// UpdateDetails applies a partial update of the caller's account
func (h *UserHandler) UpdateDetails(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req UpdateDetailsRequest
	if !h.bind(c, &req) {
		return
	}

	_, err := h.accounts.UpdateDetails(c.Request.Context(), p.UserID, appidentity.UpdateDetailsInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Company:   req.Company,
		Position:  req.Position,
		Password:  req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Done(c)
}

// RequestPasswordReset mails a reset token. Unknown emails get the same answer.
func (h *UserHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Done(c)
}

// ConfirmPasswordReset sets a new password with the mailed token
func (h *UserHandler) ConfirmPasswordReset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.accounts.ConfirmPasswordReset(c.Request.Context(), req.Email, req.Token, req.Password); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Done(c)
}

// RegisterRoutes registers the /user routes. auth guards the account routes;
// throttle applies to the anonymous ones.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc, throttle ...gin.HandlerFunc) {
	user := rg.Group("/user")

	public := user.Group("", throttle...)
	public.POST("/register", h.Register)
	public.POST("/confirm", h.Confirm)
	public.POST("/login", h.Login)
	public.POST("/password_reset", h.RequestPasswordReset)
	public.POST("/password_reset/confirm", h.ConfirmPasswordReset)

	user.GET("/details", auth, h.GetDetails)
	user.POST("/details", auth, h.UpdateDetails)
	user.POST("/logout", auth, h.Logout)
}
