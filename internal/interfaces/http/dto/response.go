package dto

import (
	"time"

	"github.com/orders/backend/internal/domain/shared"
)

// Response is the envelope for acknowledgements and failures.
// Lists and single resources are written without an envelope.
type Response struct {
	Status    bool   `json:"Status"`
	Error     string `json:"Error,omitempty"`
	Errors    any    `json:"Errors,omitempty"`
	Code      string `json:"Code,omitempty"`
	RequestID string `json:"RequestID,omitempty"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	Status    bool      `json:"Status"`
	Token     string    `json:"Token"`
	ExpiresAt time.Time `json:"ExpiresAt"`
}

// CountResponse reports how many rows a batch write touched
type CountResponse struct {
	Status  bool   `json:"Status"`
	Created *int   `json:"Created,omitempty"`
	Updated *int64 `json:"Updated,omitempty"`
	Deleted *int64 `json:"Deleted,omitempty"`
	Errors  any    `json:"Errors,omitempty"`
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewStatusResponse creates a plain {Status:true} acknowledgement
func NewStatusResponse() Response {
	return Response{Status: true}
}

// NewErrorResponse creates a failure response with a single error message
func NewErrorResponse(code, message string) Response {
	return Response{
		Status: false,
		Error:  message,
		Code:   code,
	}
}

// NewErrorResponseWithRequestID creates a failure response tagged with the request id
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.RequestID = requestID
	return resp
}

// NewValidationErrorResponse lists the rejected fields under Errors
func NewValidationErrorResponse(requestID string, details []ValidationDetail) Response {
	errs := make(map[string]string, len(details))
	for _, d := range details {
		errs[d.Field] = d.Message
	}
	return Response{
		Status:    false,
		Errors:    errs,
		Code:      CodeValidation,
		RequestID: requestID,
	}
}

// NewCreatedResponse reports lines created by a basket add
func NewCreatedResponse(n int) CountResponse {
	return CountResponse{Status: true, Created: &n}
}

// NewUpdatedResponse reports rows changed by a batch update
func NewUpdatedResponse(n int64) CountResponse {
	return CountResponse{Status: true, Updated: &n}
}

// NewDeletedResponse reports rows removed by a batch delete
func NewDeletedResponse(n int64) CountResponse {
	return CountResponse{Status: true, Deleted: &n}
}

// ListRequest carries the pagination query of list endpoints
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=id name"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// Filter converts the query into a repository filter, keeping defaults for zero values
func (r ListRequest) Filter() shared.Filter {
	f := shared.DefaultFilter()
	if r.Page > 0 {
		f.Page = r.Page
	}
	if r.PageSize > 0 {
		f.PageSize = r.PageSize
	}
	if r.OrderBy != "" {
		f.OrderBy = r.OrderBy
	}
	if r.OrderDir != "" {
		f.OrderDir = r.OrderDir
	}
	return f
}
