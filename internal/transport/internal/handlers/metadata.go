// Package handlers provides HTTP handlers for the transport layer.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	ierrors "github.com/jamesprial/coffee-shop/internal/errors"
	"github.com/jamesprial/coffee-shop/internal/oauth"
	"github.com/jamesprial/coffee-shop/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/coffee-shop/pkg/oauth"
)

// metadataHandler serves OAuth 2.0 Protected Resource Metadata per RFC 9728.
type metadataHandler struct {
	service   oauth.MetadataService
	responder transportcore.Responder
}

// NewMetadataHandler creates a handler for the /.well-known/oauth-protected-resource endpoint.
// It tells clients which issuer and permissions the drinks API expects.
func NewMetadataHandler(service oauth.MetadataService, responder transportcore.Responder) http.Handler {
	if service == nil {
		panic("service cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}

	return &metadataHandler{
		service:   service,
		responder: responder,
	}
}

// ServeHTTP handles GET requests for protected resource metadata.
// The document is the bare RFC 9728 object, not the response envelope.
func (h *metadataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		h.responder.Error(w, r, &ierrors.MethodNotAllowedError{Method: r.Method, Path: r.URL.Path})
		return
	}

	metadata, err := h.service.GetMetadata(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	w.Header().Set(pkgoauth.HeaderContentType, pkgoauth.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		slog.Error("failed to encode metadata", "error", err)
		// Can't send error response here since headers are already written
		return
	}
}
