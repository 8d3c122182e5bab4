package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/userbase/userbase/internal/middleware"
	"github.com/userbase/userbase/internal/model"
	"github.com/userbase/userbase/internal/repository"
	"github.com/userbase/userbase/internal/service"
)

// memStore is an in-memory repository.UserStore for handler tests.
type memStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*model.User)}
}

func (s *memStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *memStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *memStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memStore) ListUsers(ctx context.Context, limit, offset int) ([]*model.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		clone := *u
		all = append(all, &clone)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *memStore) UpdateUser(ctx context.Context, id string, name, email *string, updatedAt time.Time) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if email != nil {
		for uid, other := range s.users {
			if uid != id && other.Email == *email {
				return nil, repository.ErrEmailExists
			}
		}
		u.Email = *email
	}
	if name != nil {
		u.Name = *name
	}
	u.UpdatedAt = updatedAt
	clone := *u
	return &clone, nil
}

func (s *memStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// newTestRouter wires the user routes the way the application does.
func newTestRouter(store repository.UserStore) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewUserService(store, nil)
	users := NewUserHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/users", func(r chi.Router) {
		r.Post("/", users.Create)
		r.Get("/", users.List)
		r.Get("/{id}", users.Get)
		r.Patch("/{id}", users.Update)
		r.Delete("/{id}", users.Delete)
	})
	return r
}

type userEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		CreatedAt string `json:"createdAt"`
		UpdatedAt string `json:"updatedAt"`
	} `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	RequestID string `json:"requestId"`
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, userEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env userEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestUserHandler_Create(t *testing.T) {
	router := newTestRouter(newMemStore())

	rec, env := doJSON(t, router, http.MethodPost, "/users",
		`{"name":"Alice","email":"alice@example.com"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !env.Success {
		t.Error("expected success=true")
	}
	if env.Data.ID == "" {
		t.Error("expected generated id")
	}
	if env.Data.Name != "Alice" || env.Data.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", env.Data)
	}
	if env.Data.CreatedAt == "" || env.Data.CreatedAt != env.Data.UpdatedAt {
		t.Errorf("expected createdAt == updatedAt, got %q / %q", env.Data.CreatedAt, env.Data.UpdatedAt)
	}
	if env.RequestID == "" {
		t.Error("expected requestId in envelope")
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected X-Request-Id response header")
	}
}

func TestUserHandler_Create_Validation(t *testing.T) {
	router := newTestRouter(newMemStore())

	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{
			name:       "malformed JSON",
			body:       `{"name":`,
			wantDetail: "",
		},
		{
			name:       "name too short",
			body:       `{"name":"A","email":"a@example.com"}`,
			wantDetail: "name",
		},
		{
			name:       "invalid email",
			body:       `{"name":"Alice","email":"not-an-email"}`,
			wantDetail: "email",
		},
		{
			name:       "missing fields",
			body:       `{}`,
			wantDetail: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doJSON(t, router, http.MethodPost, "/users", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			if env.Success {
				t.Error("expected success=false")
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Fatalf("expected VALIDATION_ERROR, got %+v", env.Error)
			}
			if tt.wantDetail != "" {
				if _, ok := env.Error.Details[tt.wantDetail]; !ok {
					t.Errorf("expected detail for field %q, got %v", tt.wantDetail, env.Error.Details)
				}
			}
		})
	}
}

func TestUserHandler_Create_DuplicateEmail(t *testing.T) {
	router := newTestRouter(newMemStore())

	body := `{"name":"Alice","email":"alice@example.com"}`
	rec, _ := doJSON(t, router, http.MethodPost, "/users", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("setup create failed: %d", rec.Code)
	}

	rec, env := doJSON(t, router, http.MethodPost, "/users", `{"name":"Other","email":"alice@example.com"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "EMAIL_EXISTS" {
		t.Fatalf("expected EMAIL_EXISTS, got %+v", env.Error)
	}
}

func TestUserHandler_Get(t *testing.T) {
	router := newTestRouter(newMemStore())

	_, created := doJSON(t, router, http.MethodPost, "/users",
		`{"name":"Alice","email":"alice@example.com"}`)

	rec, env := doJSON(t, router, http.MethodGet, "/users/"+created.Data.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if env.Data.ID != created.Data.ID {
		t.Errorf("id = %q, want %q", env.Data.ID, created.Data.ID)
	}
}

func TestUserHandler_Get_InvalidID(t *testing.T) {
	router := newTestRouter(newMemStore())

	rec, env := doJSON(t, router, http.MethodGet, "/users/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %+v", env.Error)
	}
	if env.Error.Details["id"] != "Invalid user ID format" {
		t.Errorf("unexpected detail: %v", env.Error.Details)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	router := newTestRouter(newMemStore())

	rec, env := doJSON(t, router, http.MethodGet, "/users/0b2f8f64-0c57-4f92-9d1e-0a1b2c3d4e5f", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "USER_NOT_FOUND" {
		t.Fatalf("expected USER_NOT_FOUND, got %+v", env.Error)
	}
}

func TestUserHandler_List(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	for i := 0; i < 5; i++ {
		body := fmt.Sprintf(`{"name":"User %d","email":"user%d@example.com"}`, i, i)
		rec, _ := doJSON(t, router, http.MethodPost, "/users", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("setup create %d failed: %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/users?page=2&limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response struct {
		Success    bool              `json:"success"`
		Data       []json.RawMessage `json:"data"`
		Pagination struct {
			Page        int   `json:"page"`
			Limit       int   `json:"limit"`
			Total       int64 `json:"total"`
			TotalPages  int   `json:"totalPages"`
			HasNextPage bool  `json:"hasNextPage"`
			HasPrevPage bool  `json:"hasPrevPage"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Data) != 2 {
		t.Errorf("expected 2 users on page 2, got %d", len(response.Data))
	}
	p := response.Pagination
	if p.Page != 2 || p.Limit != 2 || p.Total != 5 || p.TotalPages != 3 {
		t.Errorf("unexpected pagination: %+v", p)
	}
	if !p.HasNextPage || !p.HasPrevPage {
		t.Errorf("expected both neighbors on middle page: %+v", p)
	}
}

func TestUserHandler_List_InvalidPagination(t *testing.T) {
	router := newTestRouter(newMemStore())

	for _, query := range []string{"?page=0", "?limit=101", "?page=abc"} {
		rec, env := doJSON(t, router, http.MethodGet, "/users"+query, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", query, rec.Code)
		}
		if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("%s: expected VALIDATION_ERROR, got %+v", query, env.Error)
		}
	}
}

func TestUserHandler_Update(t *testing.T) {
	router := newTestRouter(newMemStore())

	_, created := doJSON(t, router, http.MethodPost, "/users",
		`{"name":"Alice","email":"alice@example.com"}`)

	rec, env := doJSON(t, router, http.MethodPatch, "/users/"+created.Data.ID,
		`{"name":"Alice Updated"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Data.Name != "Alice Updated" {
		t.Errorf("name = %q, want Alice Updated", env.Data.Name)
	}
	if env.Data.Email != "alice@example.com" {
		t.Errorf("email changed unexpectedly: %s", env.Data.Email)
	}
}

func TestUserHandler_Update_EmailConflict(t *testing.T) {
	router := newTestRouter(newMemStore())

	_, first := doJSON(t, router, http.MethodPost, "/users",
		`{"name":"Alice","email":"alice@example.com"}`)
	doJSON(t, router, http.MethodPost, "/users",
		`{"name":"Bob","email":"bob@example.com"}`)

	rec, env := doJSON(t, router, http.MethodPatch, "/users/"+first.Data.ID,
		`{"email":"bob@example.com"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "EMAIL_EXISTS" {
		t.Fatalf("expected EMAIL_EXISTS, got %+v", env.Error)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	router := newTestRouter(newMemStore())

	_, created := doJSON(t, router, http.MethodPost, "/users",
		`{"name":"Alice","email":"alice@example.com"}`)

	rec, _ := doJSON(t, router, http.MethodDelete, "/users/"+created.Data.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"deleted":true`) {
		t.Errorf("expected deleted flag in body: %s", rec.Body.String())
	}

	rec, env := doJSON(t, router, http.MethodGet, "/users/"+created.Data.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "USER_NOT_FOUND" {
		t.Fatalf("expected USER_NOT_FOUND, got %+v", env.Error)
	}
}

func TestUserHandler_RequestIDEcho(t *testing.T) {
	router := newTestRouter(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set(middleware.RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get(middleware.RequestIDHeader); got != "client-supplied-id" {
		t.Errorf("header = %q, want client-supplied-id", got)
	}
	if !strings.Contains(rec.Body.String(), `"requestId":"client-supplied-id"`) {
		t.Errorf("expected requestId in envelope: %s", rec.Body.String())
	}
}
