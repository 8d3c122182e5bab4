// Package apperr defines the application error taxonomy.
// Every error carries an HTTP status, a stable machine-readable code and
// optional structured details. Errors are created where a rule fails and
// translated to the wire format only at the HTTP boundary.
package apperr

import "net/http"

// Error is a typed application error.
type Error struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// WithDetails returns a copy of the error carrying the given details.
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// New creates an Error with an explicit status.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Validation creates a 400 Bad Request error.
func Validation(code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Forbidden creates a 403 Forbidden error.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, "FORBIDDEN", message)
}

// NotFound creates a 404 Not Found error.
func NotFound(code, message string) *Error {
	return New(http.StatusNotFound, code, message)
}

// Conflict creates a 409 Conflict error.
func Conflict(code, message string) *Error {
	return New(http.StatusConflict, code, message)
}

// TooManyRequests creates a 429 Too Many Requests error.
func TooManyRequests(message string) *Error {
	return New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", message)
}

// Internal creates a 500 Internal Server Error.
// The message is intentionally generic; details of the underlying failure
// belong in server-side logs, never in the response.
func Internal() *Error {
	return New(http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
}
