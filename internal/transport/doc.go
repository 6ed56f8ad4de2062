// Package transport provides the HTTP adapter of the drinks API.
//
// # Architecture
//
// Handlers parse the path and hand the raw Authorization header and body
// to the drink service. The service checks permissions itself, so no route
// carries auth middleware; the adapter only renders results and errors.
//
// Package structure:
//
//	internal/transport/
//	├── transport.go              # Public interfaces
//	├── context.go                # Request id context helpers
//	├── wire.go                   # Factory functions and route table
//	├── internal/
//	│   ├── http/
//	│   │   ├── server.go         # HTTP server with graceful shutdown
//	│   │   ├── router.go         # chi routing with envelope fallbacks
//	│   │   └── response.go       # Envelope responder with WWW-Authenticate
//	│   ├── middleware/
//	│   │   ├── cors.go           # Cross-origin headers and preflight
//	│   │   ├── logging.go        # Request id and request logging
//	│   │   └── recovery.go       # Panic recovery
//	│   └── handlers/
//	│       ├── drinks.go         # Drink routes
//	│       ├── metadata.go       # /.well-known/oauth-protected-resource
//	│       └── health.go         # Health check endpoint
//
// # Middleware Chain
//
// The middleware chain is applied in this order:
//
//  1. Recovery - catches panics and returns 500 errors
//  2. Logging - assigns X-Request-ID and logs request details
//  3. Metrics - Prometheus request counters by chi route pattern
//  4. CORS - answers preflight requests and sets allow headers
//
// # Envelope
//
// Success:
//
//	HTTP/1.1 200 OK
//	Content-Type: application/json
//
//	{"drinks": [{"id": 1, "title": "water", "recipe": [{"color": "blue", "parts": 1}]}], "success": true}
//
// Failure:
//
//	HTTP/1.1 403 Forbidden
//	WWW-Authenticate: Bearer realm="drinks", error="insufficient_scope", error_description="Permission not found.", scope="post:drinks", resource_metadata="https://example.com/.well-known/oauth-protected-resource"
//	Content-Type: application/json
//
//	{"error": "unauthorized", "message": "Permission not found.", "success": false}
//
// # Endpoints
//
//   - GET /drinks - short projection of every drink (public by default)
//   - GET /drinks-detail - long projection, get:drinks-detail
//   - POST /drinks - create, post:drinks
//   - PATCH /drinks/{id} - partial update, patch:drinks
//   - DELETE /drinks/{id} - delete, delete:drinks
//   - GET /.well-known/oauth-protected-resource - Protected Resource Metadata (RFC 9728)
//   - GET /health - Health check
//   - GET /metrics - Prometheus metrics
package transport
