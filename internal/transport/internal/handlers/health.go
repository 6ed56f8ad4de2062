package handlers

import (
	"context"
	"net/http"
	"time"

	ierrors "github.com/jamesprial/coffee-shop/internal/errors"
	"github.com/jamesprial/coffee-shop/internal/transport/transportcore"
)

// pingTimeout bounds the storage check of a health request.
const pingTimeout = 2 * time.Second

// Pinger reports whether storage is reachable. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// healthHandler provides a simple health check endpoint.
type healthHandler struct {
	db        Pinger
	responder transportcore.Responder
}

// NewHealthHandler creates a handler for the /health endpoint.
// When db is non-nil the storage connection is pinged too.
func NewHealthHandler(db Pinger, responder transportcore.Responder) http.Handler {
	if responder == nil {
		panic("responder cannot be nil")
	}

	return &healthHandler{
		db:        db,
		responder: responder,
	}
}

// ServeHTTP handles GET requests for health checks.
// Only GET method is allowed.
func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		h.responder.Error(w, r, &ierrors.MethodNotAllowedError{Method: r.Method, Path: r.URL.Path})
		return
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			h.responder.Error(w, r, ierrors.NewUnavailableError("database", err))
			return
		}
	}

	h.responder.Success(w, r, map[string]any{"status": "ok"})
}
