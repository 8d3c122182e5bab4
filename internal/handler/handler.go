// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/userbase/userbase/internal/apperr"
	"github.com/userbase/userbase/internal/handler/dto"
	"github.com/userbase/userbase/internal/middleware"
)

// Version is the API version reported by the root endpoint.
const Version = "1.0.0"

// Handler serves the root info endpoint and router fallbacks.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Root reports service name, version and a documentation pointer.
// GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"name":          "Userbase API",
		"version":       Version,
		"documentation": "/docs",
	}
	writeSuccess(w, r, http.StatusOK, data)
}

// NotFound handles 404 responses for unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeAppError(w, r, apperr.NotFound("NOT_FOUND", "Route not found"))
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeAppError(w, r, apperr.New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed"))
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeSuccess writes data inside the success envelope.
func writeSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, dto.NewSuccess(data, middleware.GetRequestID(r.Context())))
}

// writePaginated writes list data inside the paginated envelope.
func writePaginated(w http.ResponseWriter, r *http.Request, data any, pagination dto.Pagination) {
	writeJSON(w, http.StatusOK, dto.NewPaginated(data, pagination, middleware.GetRequestID(r.Context())))
}

// writeAppError writes a typed error inside the error envelope using the
// error's own status code.
func writeAppError(w http.ResponseWriter, r *http.Request, err *apperr.Error) {
	writeJSON(w, err.Status, dto.NewError(err, middleware.GetRequestID(r.Context())))
}
