package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/userbase/userbase/internal/metrics"
)

func TestLogger_LogsRequestCompletion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := Logger(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	output := buf.String()

	if !strings.Contains(output, "request started") {
		t.Error("expected a debug line at request start")
	}
	if !strings.Contains(output, "request completed") {
		t.Error("expected a line at request end")
	}
	if !strings.Contains(output, `"status_code":201`) {
		t.Errorf("expected status_code 201 in log output: %s", output)
	}
	if !strings.Contains(output, `"method":"POST"`) {
		t.Errorf("expected method POST in log output: %s", output)
	}
	if !strings.Contains(output, "duration_ms") {
		t.Error("expected duration_ms in log output")
	}
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"2xx logs info", http.StatusOK, `"level":"INFO"`},
		{"4xx logs warn", http.StatusNotFound, `"level":"WARN"`},
		{"5xx logs error", http.StatusInternalServerError, `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			handler := Logger(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if !strings.Contains(buf.String(), tt.wantLevel) {
				t.Errorf("expected %s in output: %s", tt.wantLevel, buf.String())
			}
		})
	}
}

func TestLogger_RecordsMetrics(t *testing.T) {
	recorder := metrics.NewInMemory()
	logger := slog.New(slog.NewTextHandler(new(bytes.Buffer), nil))

	handler := Logger(logger, recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if snap := recorder.Snapshot(); snap.RequestCount != 1 {
		t.Errorf("request count = %d, want 1", snap.RequestCount)
	}
}

func TestResponseWriter_CapturesImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := wrapResponseWriter(rec)

	if _, err := wrapped.Write([]byte("body")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if wrapped.status != http.StatusOK {
		t.Errorf("status = %d, want 200", wrapped.status)
	}
}
