package dto

import "github.com/userbase/userbase/internal/apperr"

// SuccessEnvelope is the uniform wrapper for successful responses.
type SuccessEnvelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	RequestID string `json:"requestId"`
}

// PaginatedEnvelope wraps list responses with pagination metadata.
type PaginatedEnvelope struct {
	Success    bool       `json:"success"`
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
	RequestID  string     `json:"requestId"`
}

// ErrorBody carries the machine-readable error payload.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorEnvelope is the uniform wrapper for failed responses.
type ErrorEnvelope struct {
	Success   bool      `json:"success"`
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"requestId"`
}

// NewSuccess builds a success envelope.
func NewSuccess(data any, requestID string) SuccessEnvelope {
	return SuccessEnvelope{
		Success:   true,
		Data:      data,
		RequestID: requestID,
	}
}

// NewPaginated builds a paginated success envelope.
func NewPaginated(data any, pagination Pagination, requestID string) PaginatedEnvelope {
	return PaginatedEnvelope{
		Success:    true,
		Data:       data,
		Pagination: pagination,
		RequestID:  requestID,
	}
}

// NewError builds an error envelope from a typed application error.
func NewError(err *apperr.Error, requestID string) ErrorEnvelope {
	return ErrorEnvelope{
		Success: false,
		Error: ErrorBody{
			Code:    err.Code,
			Message: err.Message,
			Details: err.Details,
		},
		RequestID: requestID,
	}
}
