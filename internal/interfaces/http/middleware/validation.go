package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/orders/backend/internal/interfaces/http/dto"
)

// RequestIDKey is the gin context key for the request id
const RequestIDKey = "request_id"

// SetupValidator configures the validator with custom tags
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Use JSON tag names for field names in errors
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// FormatValidationErrors renders a binding failure as a Status:false response.
// Field errors are listed under Errors; a body that cannot be decoded gets a
// single Error message.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var (
		validationErrors validator.ValidationErrors
		typeErr          *json.UnmarshalTypeError
		syntaxErr        *json.SyntaxError
	)
	switch {
	case errors.As(err, &validationErrors):
		details := make([]dto.ValidationDetail, 0, len(validationErrors))
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
		return dto.NewValidationErrorResponse(requestID, details)
	case errors.As(err, &typeErr):
		return dto.NewValidationErrorResponse(requestID, []dto.ValidationDetail{
			{Field: typeErr.Field, Message: "Must be a " + typeErr.Type.String()},
		})
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return dto.NewErrorResponseWithRequestID(dto.CodeBadRequest, "Missing or malformed request body", requestID)
	default:
		return dto.NewErrorResponseWithRequestID(dto.CodeValidation, err.Error(), requestID)
	}
}

// HandleValidationError writes the validation failure with status 200
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusOK, FormatValidationErrors(err, GetRequestID(c)))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "url", "http_url":
		return "Invalid URL format"
	default:
		return "Invalid value"
	}
}
