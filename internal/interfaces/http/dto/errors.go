package dto

import "net/http"

// Wire error codes produced by the HTTP layer itself. Domain errors keep
// their own codes (NOT_FOUND, CONFLICT, DUPLICATE_LINE, ...).
const (
	CodeInternal     = "INTERNAL_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenRevoked = "TOKEN_REVOKED"
	CodeForbidden    = "FORBIDDEN"
	CodeRateLimited  = "RATE_LIMITED"
	CodeTooLarge     = "REQUEST_TOO_LARGE"
	CodeImportBusy   = "IMPORT_BUSY"
)

// ErrorCodeHTTPStatus lists the codes that leave the 200 + Status:false convention.
// Validation, conflict and not-found failures are reported with 200.
var ErrorCodeHTTPStatus = map[string]int{
	CodeInternal: http.StatusInternalServerError,

	// Auth
	CodeUnauthorized: http.StatusUnauthorized,
	CodeTokenInvalid: http.StatusUnauthorized,
	CodeTokenExpired: http.StatusUnauthorized,
	CodeTokenRevoked: http.StatusUnauthorized,
	CodeForbidden:    http.StatusForbidden,

	// Transport limits
	CodeRateLimited: http.StatusTooManyRequests,
	CodeTooLarge:    http.StatusRequestEntityTooLarge,
	CodeImportBusy:  http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an error code, 200 when the code
// is a business failure
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusOK
}
