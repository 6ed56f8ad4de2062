package transport

import (
	"github.com/jamesprial/coffee-shop/internal/transport/transportcore"
)

// Re-export types from transportcore.
// This allows external packages to import transport without creating cycles.

// Middleware is a function that wraps an http.Handler.
type Middleware = transportcore.Middleware

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server = transportcore.Server

// Router handles HTTP request routing and middleware composition.
type Router = transportcore.Router

// Responder writes the JSON response envelope.
type Responder = transportcore.Responder
