package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	ierrors "github.com/jamesprial/coffee-shop/internal/errors"
	"github.com/jamesprial/coffee-shop/internal/transport/transportcore"
	"github.com/jamesprial/coffee-shop/pkg/oauth"
)

// Realm is the protection space named in WWW-Authenticate headers.
const Realm = "drinks"

// errorResponse is the failure envelope.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// responder implements transportcore.Responder.
type responder struct {
	metadataURL string
	logger      *slog.Logger
}

// NewResponder creates a responder. The metadata URL is included in
// WWW-Authenticate headers per RFC 9728. A nil logger uses slog.Default.
func NewResponder(metadataURL string, logger *slog.Logger) transportcore.Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &responder{
		metadataURL: metadataURL,
		logger:      logger,
	}
}

// Success sends a 200 response with {"success": true} merged into fields.
func (e *responder) Success(w http.ResponseWriter, r *http.Request, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true

	e.write(w, r, http.StatusOK, body)
}

// Error resolves err and sends the failure envelope. The underlying cause
// is logged at warn for 4xx and error for 5xx, and never rendered.
func (e *responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	res := ierrors.Resolve(err)

	var authErr *ierrors.AuthError
	if errors.As(err, &authErr) && (res.Status == http.StatusUnauthorized || res.Status == http.StatusForbidden) {
		w.Header().Set(oauth.HeaderWWWAuthenticate, authErr.WWWAuthenticate(Realm, e.metadataURL))
	}

	attrs := []any{
		"status", res.Status,
		"code", res.Code,
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
	}
	if id, ok := transportcore.RequestIDFromContext(r.Context()); ok {
		attrs = append(attrs, "request_id", id)
	}
	if res.Status >= http.StatusInternalServerError {
		e.logger.ErrorContext(r.Context(), "request failed", attrs...)
	} else {
		e.logger.WarnContext(r.Context(), "request rejected", attrs...)
	}

	e.write(w, r, res.Status, errorResponse{
		Success: false,
		Error:   res.Code,
		Message: res.Message,
	})
}

func (e *responder) write(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set(oauth.HeaderContentType, oauth.ContentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already written; nothing more can be sent.
		e.logger.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}
