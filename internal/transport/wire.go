package transport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jamesprial/coffee-shop/internal/config"
	"github.com/jamesprial/coffee-shop/internal/metrics"
	"github.com/jamesprial/coffee-shop/internal/oauth"
	"github.com/jamesprial/coffee-shop/internal/transport/internal/handlers"
	transporthttp "github.com/jamesprial/coffee-shop/internal/transport/internal/http"
	"github.com/jamesprial/coffee-shop/internal/transport/internal/middleware"
	"github.com/jamesprial/coffee-shop/internal/transport/transportcore"
)

// DrinkService runs the drink use cases. *drink.Service implements it.
type DrinkService = transportcore.DrinkService

// Pinger reports whether storage is reachable. *sql.DB implements it.
type Pinger = handlers.Pinger

// NewServer creates a configured HTTP server.
// The server is configured with timeouts from the config and uses the provided router.
func NewServer(cfg *config.Config, router Router) Server {
	return transporthttp.NewServer(cfg, router)
}

// NewRouter creates a chi-backed router whose fallbacks render the failure envelope.
func NewRouter(responder Responder) Router {
	return transporthttp.NewRouter(responder)
}

// NewResponder creates the envelope responder.
// The metadataURL is included in WWW-Authenticate headers for client discovery.
func NewResponder(metadataURL string, logger *slog.Logger) Responder {
	return transporthttp.NewResponder(metadataURL, logger)
}

// NewMetadataHandler creates the OAuth protected resource metadata handler.
// It serves metadata at /.well-known/oauth-protected-resource per RFC 9728.
func NewMetadataHandler(service oauth.MetadataService, responder Responder) http.Handler {
	return handlers.NewMetadataHandler(service, responder)
}

// NewHealthHandler creates the health check handler.
// A non-nil db is pinged on every check.
func NewHealthHandler(db Pinger, responder Responder) http.Handler {
	return handlers.NewHealthHandler(db, responder)
}

// NewLoggingMiddleware creates request logging middleware.
// It assigns each request an X-Request-ID and logs it with the outcome.
// If logger is nil, it uses the default slog logger.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return middleware.NewLoggingMiddleware(logger)
}

// NewRecoveryMiddleware creates panic recovery middleware.
// It recovers from panics and returns a 500 error to the client.
// If logger is nil, it uses the default slog logger.
func NewRecoveryMiddleware(responder Responder, logger *slog.Logger) Middleware {
	return middleware.NewRecoveryMiddleware(responder, logger)
}

// NewCORSMiddleware creates cross-origin middleware for the allowed origins.
func NewCORSMiddleware(allowedOrigins []string) Middleware {
	return middleware.NewCORSMiddleware(allowedOrigins)
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// ServerConfig is the server configuration.
	ServerConfig *config.Config

	// Drinks runs the drink use cases.
	Drinks DrinkService

	// MetadataService provides protected resource metadata.
	MetadataService oauth.MetadataService

	// DB is pinged by the health check. Optional.
	DB Pinger

	// Logger is used by the responder and middleware. Nil uses slog.Default.
	Logger *slog.Logger
}

// NewTransportServices creates all transport layer services from the configuration.
// It wires routing, middleware, and handlers into a server ready to Start.
func NewTransportServices(cfg *Config) (Server, Router, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ServerConfig == nil {
		return nil, nil, fmt.Errorf("server config cannot be nil")
	}
	if cfg.Drinks == nil {
		return nil, nil, fmt.Errorf("drink service cannot be nil")
	}
	if cfg.MetadataService == nil {
		return nil, nil, fmt.Errorf("metadata service cannot be nil")
	}

	responder := NewResponder(cfg.MetadataService.GetMetadataURL(), cfg.Logger)
	router := NewRouter(responder)

	// Global middleware, outermost first.
	router.Use(
		NewRecoveryMiddleware(responder, cfg.Logger),
		NewLoggingMiddleware(cfg.Logger),
		metrics.InstrumentHandler,
		NewCORSMiddleware(cfg.ServerConfig.CORSAllowedOrigins),
	)

	registerRoutes(router, cfg, responder)

	return NewServer(cfg.ServerConfig, router), router, nil
}

// registerRoutes mounts every endpoint. Drink routes carry no auth
// middleware; each use case checks its own permission.
func registerRoutes(router Router, cfg *Config, responder Responder) {
	drinks := handlers.NewDrinksHandler(cfg.Drinks, responder)

	router.HandleFunc("GET /drinks", drinks.List)
	router.HandleFunc("GET /drinks-detail", drinks.Detail)
	router.HandleFunc("POST /drinks", drinks.Create)
	router.HandleFunc("PATCH /drinks/{id}", drinks.Update)
	router.HandleFunc("DELETE /drinks/{id}", drinks.Delete)

	router.Handle("GET /.well-known/oauth-protected-resource", NewMetadataHandler(cfg.MetadataService, responder))
	router.Handle("GET /health", NewHealthHandler(cfg.DB, responder))
	router.Handle("GET /metrics", metrics.Handler())
}
