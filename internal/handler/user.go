package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/userbase/userbase/internal/apperr"
	"github.com/userbase/userbase/internal/handler/dto"
	"github.com/userbase/userbase/internal/service"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	svc      *service.UserService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger,
	}
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, r, apperr.Validation("VALIDATION_ERROR", "Invalid request body"))
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeAppError(w, r, validationError(err))
		return
	}

	user, err := h.svc.CreateUser(r.Context(), service.CreateUserInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_created", "user_id", user.ID)

	writeSuccess(w, r, http.StatusCreated, dto.ToUserResponse(user))
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := userID(r)
	if appErr != nil {
		writeAppError(w, r, appErr)
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, r, http.StatusOK, dto.ToUserResponse(user))
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, appErr := dto.ParsePagination(r.URL.Query())
	if appErr != nil {
		writeAppError(w, r, appErr)
		return
	}

	result, err := h.svc.ListUsers(r.Context(), page, limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writePaginated(w, r,
		dto.ToUserResponses(result.Users),
		dto.PaginationMeta(result.Total, result.Page, result.Limit),
	)
}

// Update handles PATCH /users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := userID(r)
	if appErr != nil {
		writeAppError(w, r, appErr)
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, r, apperr.Validation("VALIDATION_ERROR", "Invalid request body"))
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeAppError(w, r, validationError(err))
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), service.UpdateUserInput{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_updated", "user_id", user.ID)

	writeSuccess(w, r, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := userID(r)
	if appErr != nil {
		writeAppError(w, r, appErr)
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_deleted", "user_id", id)

	writeSuccess(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

// userID extracts and validates the {id} route parameter.
func userID(r *http.Request) (string, *apperr.Error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.Validation("VALIDATION_ERROR", "Validation failed").
			WithDetails(map[string]any{"id": "Invalid user ID format"})
	}
	return id, nil
}

// handleServiceError maps service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeAppError(w, r, apperr.NotFound("USER_NOT_FOUND", "User not found"))
	case errors.Is(err, service.ErrEmailExists):
		writeAppError(w, r, apperr.Conflict("EMAIL_EXISTS", "User with this email already exists"))
	default:
		h.logger.Error("internal_error", "error", err)
		writeAppError(w, r, apperr.Internal())
	}
}

// validationError converts validator failures into a 400 with per-field
// details.
func validationError(err error) *apperr.Error {
	details := make(map[string]any)

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details[strings.ToLower(fe.Field())] = fieldMessage(fe)
		}
	}

	appErr := apperr.Validation("VALIDATION_ERROR", "Validation failed")
	if len(details) > 0 {
		appErr = appErr.WithDetails(details)
	}
	return appErr
}

// fieldMessage renders a human-readable message per failed field.
func fieldMessage(fe validator.FieldError) string {
	switch strings.ToLower(fe.Field()) {
	case "name":
		return "Name must be between 2 and 255 characters"
	case "email":
		return "Invalid email format"
	default:
		return "Invalid value"
	}
}
