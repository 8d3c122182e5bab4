package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/userbase/userbase/internal/apperr"
)

// HealthChecker defines an interface for checking a dependency's health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	db HealthChecker
}

// NewHealthHandler creates a new HealthHandler.
// Pass nil for db if it is not yet initialized.
func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health is a liveness check: it returns ok whenever the process is up.
//
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	writeSuccess(w, r, http.StatusOK, data)
}

// HealthDB reports database reachability. The contract is to report
// status, not to fail hard: a broken database still answers HTTP 200,
// with success=false and a DATABASE_ERROR payload.
//
// GET /health/db
func (h *HealthHandler) HealthDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var err error
	if h.db != nil {
		err = h.db.Ping(ctx)
	}

	if h.db == nil || err != nil {
		dbErr := apperr.New(http.StatusOK, "DATABASE_ERROR", "Database connection failed")
		writeAppError(w, r, dbErr)
		return
	}

	data := map[string]string{
		"status":    "ok",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	writeSuccess(w, r, http.StatusOK, data)
}
