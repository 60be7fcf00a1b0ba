package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appidentity "github.com/orders/backend/internal/application/identity"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/infrastructure/logger"
	"github.com/orders/backend/internal/interfaces/http/dto"
	"github.com/orders/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// principal returns the authenticated caller. Routes using it sit behind
// RequireAuth, so a missing principal answers 401.
func (h *BaseHandler) principal(c *gin.Context) (*appidentity.Principal, bool) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		h.Error(c, http.StatusUnauthorized, dto.CodeUnauthorized, "Log in required")
		return nil, false
	}
	return p, true
}

// bind decodes the JSON body into obj and answers the validation failure itself
func (h *BaseHandler) bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// missing answers a validation failure for an absent field the binding tags cannot express
func (h *BaseHandler) missing(c *gin.Context, field string) {
	c.JSON(http.StatusOK, dto.NewValidationErrorResponse(
		middleware.GetRequestID(c),
		[]dto.ValidationDetail{{Field: field, Message: "This field is required"}},
	))
}

// OK writes data as the whole response body
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Done writes {Status:true}
func (h *BaseHandler) Done(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewStatusResponse())
}

// Accepted writes {Status:true} with 202 for work that continues in the background
func (h *BaseHandler) Accepted(c *gin.Context) {
	c.JSON(http.StatusAccepted, dto.NewStatusResponse())
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// Fail reports a business failure as 200 with Status:false
func (h *BaseHandler) Fail(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// HandleError converts an error into a response. Domain errors keep their
// code and message; anything else is logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Fail(c, domainErr.Code, domainErr.Message)
		return
	}

	logger.L(c.Request.Context()).Error("Request failed", zap.Error(err), zap.String("route", c.FullPath()))
	h.Error(c, http.StatusInternalServerError, dto.CodeInternal, "An unexpected error occurred")
}
