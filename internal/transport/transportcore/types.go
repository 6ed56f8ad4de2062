// Package transportcore provides core types, interfaces, and primitives for the transport layer.
// This package exists to break import cycles between the transport package and its internal subpackages.
package transportcore

import (
	"context"
	"net/http"

	"github.com/jamesprial/coffee-shop/internal/drink"
	"github.com/jamesprial/coffee-shop/internal/model"
)

// Middleware is a function that wraps an http.Handler.
// It can modify the request, response, or perform additional logic
// before or after calling the next handler in the chain.
type Middleware func(http.Handler) http.Handler

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server interface {
	// Start begins serving HTTP requests on the configured address.
	// This is a blocking call that returns when the server stops
	// or encounters an error during startup.
	Start() error

	// Shutdown gracefully shuts down the server without interrupting
	// active connections. It waits for active connections to close
	// or the context to be cancelled/expired.
	Shutdown(ctx context.Context) error

	// Addr returns the address the server is listening on.
	// This is useful when the server is configured to bind to a random port.
	Addr() string
}

// Router handles HTTP request routing and middleware composition.
// It extends http.Handler with pattern-based routing and middleware support.
type Router interface {
	http.Handler

	// Handle registers a handler for the given pattern.
	// Patterns are "METHOD /path" or "/path"; path segments like {id}
	// follow chi conventions.
	Handle(pattern string, handler http.Handler)

	// HandleFunc registers a handler function for the given pattern.
	HandleFunc(pattern string, handler http.HandlerFunc)

	// Use applies middleware to every route, including the not found and
	// method not allowed fallbacks. It must be called before Handle.
	Use(middlewares ...Middleware)
}

// Responder writes the JSON response envelope.
//
// Success bodies are {"success": true, ...fields}. Failure bodies are
// {"success": false, "error": <tag>, "message": <text>}.
type Responder interface {
	// Success sends a 200 response merging fields into the envelope.
	Success(w http.ResponseWriter, r *http.Request, fields map[string]any)

	// Error resolves err to a status and tag and sends the failure
	// envelope. 401 and 403 responses carry a WWW-Authenticate header.
	// The cause is logged, never rendered.
	Error(w http.ResponseWriter, r *http.Request, err error)
}

// DrinkService runs the drink use cases. *drink.Service implements it.
// Every method takes the raw Authorization header value; permission checks
// happen inside the use case.
type DrinkService interface {
	List(ctx context.Context, authorization string) ([]model.ShortDrink, error)
	Detail(ctx context.Context, authorization string) ([]model.LongDrink, error)
	Create(ctx context.Context, authorization string, body drink.Decoder) (model.LongDrink, error)
	Update(ctx context.Context, authorization string, id int64, body drink.Decoder) (model.LongDrink, error)
	Delete(ctx context.Context, authorization string, id int64) error
}
