package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/jamesprial/coffee-shop/internal/transport/transportcore"
)

// testLogHandler captures log entries for testing.
type testLogHandler struct {
	mu      *sync.Mutex
	entries *[]map[string]any // Pointer for shared state
}

func newTestLogger() (*slog.Logger, *testLogHandler) {
	entries := make([]map[string]any, 0)
	h := &testLogHandler{mu: &sync.Mutex{}, entries: &entries}
	return slog.New(h), h
}

func (h *testLogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	entry := map[string]any{
		"level":   r.Level.String(),
		"message": r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		entry[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.entries = append(*h.entries, entry)
	return nil
}

func (h *testLogHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *testLogHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *testLogHandler) all() []map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]map[string]any(nil), *h.entries...)
}

func TestLogging_LogsRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		path       string
		status     int
		writeBody  bool
		wantStatus int64
	}{
		{"ok with implicit status", http.MethodGet, "/drinks", 0, true, 200},
		{"client error", http.MethodPost, "/drinks", http.StatusUnprocessableEntity, false, 422},
		{"server error", http.MethodDelete, "/drinks/1", http.StatusInternalServerError, true, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, logs := newTestLogger()
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				if tt.writeBody {
					_, _ = w.Write([]byte("body"))
				}
			})

			w := httptest.NewRecorder()
			NewLoggingMiddleware(logger)(next).ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			entries := logs.all()
			if len(entries) != 1 {
				t.Fatalf("got %d log entries, want 1", len(entries))
			}
			entry := entries[0]
			if entry["method"] != tt.method {
				t.Errorf("method = %v, want %s", entry["method"], tt.method)
			}
			if entry["path"] != tt.path {
				t.Errorf("path = %v, want %s", entry["path"], tt.path)
			}
			if entry["status"] != tt.wantStatus {
				t.Errorf("status = %v, want %d", entry["status"], tt.wantStatus)
			}
			if _, ok := entry["duration_ms"]; !ok {
				t.Error("Log should contain request duration")
			}
		})
	}
}

func TestLogging_RequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		header    string
		wantEcho  bool
		wantValid bool
	}{
		{"generated when absent", "", false, true},
		{"client id kept", "client-req-7", true, false},
		{"oversized id replaced", strings.Repeat("x", maxRequestIDLength+1), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, logs := newTestLogger()
			var ctxID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID, _ = transportcore.RequestIDFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/drinks", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			w := httptest.NewRecorder()
			NewLoggingMiddleware(logger)(next).ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			if got == "" || got != ctxID {
				t.Fatalf("response id %q and context id %q must match and be set", got, ctxID)
			}
			if tt.wantEcho && got != tt.header {
				t.Errorf("X-Request-ID = %q, want %q", got, tt.header)
			}
			if tt.wantValid {
				if _, err := uuid.Parse(got); err != nil {
					t.Errorf("generated id %q is not a UUID: %v", got, err)
				}
			}
			if logs.all()[0]["request_id"] != got {
				t.Errorf("logged request_id = %v, want %q", logs.all()[0]["request_id"], got)
			}
		})
	}
}

func TestLogging_PassesThroughResponse(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom-Header", "custom-value")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
		w.WriteHeader(http.StatusTeapot) // ignored
	})

	w := httptest.NewRecorder()
	NewLoggingMiddleware(nil)(next).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/drinks", nil))

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
	if w.Header().Get("X-Custom-Header") != "custom-value" {
		t.Error("Custom header should be passed through")
	}
	if w.Body.String() != "created" {
		t.Errorf("Body = %q, want created", w.Body.String())
	}
}
