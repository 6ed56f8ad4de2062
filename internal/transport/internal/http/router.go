package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	ierrors "github.com/jamesprial/coffee-shop/internal/errors"
	"github.com/jamesprial/coffee-shop/internal/transport/transportcore"
)

// router implements transportcore.Router using chi.
type router struct {
	mux chi.Router
}

// NewRouter creates a new chi-backed router. Unknown paths and unsupported
// methods are answered with the failure envelope through responder.
func NewRouter(responder transportcore.Responder) transportcore.Router {
	if responder == nil {
		panic("responder cannot be nil")
	}

	mux := chi.NewRouter()
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responder.Error(w, r, ierrors.NewNotFoundError("route", r.URL.Path))
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responder.Error(w, r, &ierrors.MethodNotAllowedError{Method: r.Method, Path: r.URL.Path})
	})

	return &router{mux: mux}
}

// Handle registers a handler for the given pattern.
// A "METHOD /path" pattern restricts the route to that method.
func (r *router) Handle(pattern string, handler http.Handler) {
	if method, path, ok := strings.Cut(pattern, " "); ok {
		r.mux.Method(method, strings.TrimSpace(path), handler)
		return
	}
	r.mux.Handle(pattern, handler)
}

// HandleFunc registers a handler function for the given pattern.
func (r *router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// Use applies middleware to every route. Middleware is applied in the
// order registered, so the first one is the outermost layer.
func (r *router) Use(middlewares ...transportcore.Middleware) {
	for _, mw := range middlewares {
		r.mux.Use(mw)
	}
}

// ServeHTTP implements http.Handler by delegating to chi.
func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
