// Package main provides the entry point for the coffee shop drinks API.
// It wires together all components using dependency injection and manages
// the server lifecycle with graceful shutdown.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesprial/coffee-shop/internal/config"
	"github.com/jamesprial/coffee-shop/internal/drink"
	"github.com/jamesprial/coffee-shop/internal/oauth"
	"github.com/jamesprial/coffee-shop/internal/policy"
	"github.com/jamesprial/coffee-shop/internal/store"
	"github.com/jamesprial/coffee-shop/internal/transport"
)

func main() {
	// Set up structured logging; the level is raised or lowered once config is read.
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Load configuration from .env and the environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	level.Set(cfg.SlogLevel())

	slog.Info("server configuration loaded", "config", cfg.String())

	// Wire storage
	db, err := store.Configure(cfg.Database)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if err := store.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get database pool: %v", err)
	}

	repo := store.NewDrinkRepository(db)
	if cfg.Database.Seed {
		if _, err := store.Seed(context.Background(), repo); err != nil {
			log.Fatalf("failed to seed database: %v", err)
		}
	}

	slog.Info("storage initialized", "driver", cfg.Database.Driver)

	// Load the permission policy
	pol, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		log.Fatalf("failed to load policy: %v", err)
	}

	// Wire OAuth components
	oauthCfg := &oauth.Config{
		BaseURL:                cfg.BaseURL,
		Issuer:                 cfg.Issuer,
		Audience:               cfg.Audience,
		JWKSURL:                cfg.JWKSURL,
		Permissions:            pol.Permissions(),
		JWKSCacheTTL:           cfg.JWKSCacheTTL,
		JWKSFetchTimeout:       cfg.JWKSFetchTimeout,
		JWKSMinRefreshInterval: cfg.JWKSMinRefreshInterval,
		ClockSkew:              cfg.ClockSkew,
	}

	gate, _, metadataService, jwksClient := oauth.NewOAuthServices(oauthCfg)

	// Warm the key cache; requests refetch on demand if this fails.
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), cfg.JWKSFetchTimeout)
	if err := jwksClient.RefreshKeys(warmCtx); err != nil {
		slog.Warn("initial key set fetch failed", "error", err)
	}
	cancelWarm()

	slog.Info("oauth services initialized",
		"issuer", cfg.Issuer,
		"audience", cfg.Audience,
		"jwks_cache_ttl", cfg.JWKSCacheTTL,
		"clock_skew", cfg.ClockSkew,
	)

	// Wire drink use cases
	drinks := drink.NewService(gate, repo, pol, logger)

	// Wire transport layer
	transportCfg := &transport.Config{
		ServerConfig:    cfg,
		Drinks:          drinks,
		MetadataService: metadataService,
		DB:              sqlDB,
		Logger:          logger,
	}

	server, _, err := transport.NewTransportServices(transportCfg)
	if err != nil {
		log.Fatalf("failed to create transport services: %v", err)
	}

	slog.Info("transport services initialized",
		"metadata_url", metadataService.GetMetadataURL(),
	)

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in background goroutine
	serverErrCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Addr)
		if err := server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping server gracefully...")
	case err := <-serverErrCh:
		slog.Error("server error", "error", err)
		stop()
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return
	}

	slog.Info("server stopped successfully")
}
