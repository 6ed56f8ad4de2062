// Package config provides configuration management for the drinks API.
// Configuration is loaded from environment variables, optionally seeded
// from a .env file, with sensible defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the complete server configuration.
type Config struct {
	// Server settings
	// Addr is the address to bind the HTTP server (e.g., ":8080").
	Addr string

	// BaseURL is where clients reach this server (e.g., "https://coffee.example.com").
	// It is used to build the protected resource metadata URL.
	BaseURL string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum duration to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// CORSAllowedOrigins lists origins allowed by the CORS middleware. "*" allows all.
	CORSAllowedOrigins []string

	// OAuth settings
	// Issuer is the identity provider's issuer URL, e.g. "https://tenant.auth0.com/".
	Issuer string

	// Audience is the expected audience (aud) claim in access tokens.
	Audience string

	// JWKSURL overrides the key set location. Defaults to <issuer>.well-known/jwks.json.
	JWKSURL string

	// JWKSCacheTTL is how long to cache the provider's key set.
	JWKSCacheTTL time.Duration

	// JWKSFetchTimeout bounds a single key set fetch.
	JWKSFetchTimeout time.Duration

	// JWKSMinRefreshInterval rate-limits refetches triggered by unknown kids.
	JWKSMinRefreshInterval time.Duration

	// ClockSkew is the allowed clock skew for token expiration validation.
	ClockSkew time.Duration

	// PolicyFile is an optional YAML permission policy. Empty uses the built-in policy.
	PolicyFile string

	// LogLevel is one of debug, info, warn or error.
	LogLevel string

	// Database settings
	Database DatabaseConfig
}

// DatabaseConfig configures the storage engine connection.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string

	// URL is the DSN passed to the driver.
	URL string

	// MaxOpenConns, MaxIdleConns and ConnMaxLifetime tune the pool. Zero keeps driver defaults.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Seed inserts a sample drink when the table is empty.
	Seed bool
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first when present; it
// never overrides variables that are already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:               getEnvWithDefault("SERVER_ADDR", ":8080"),
		BaseURL:            getEnvWithDefault("SERVER_BASE_URL", "http://localhost:8080"),
		CORSAllowedOrigins: parseCommaSeparated("CORS_ALLOWED_ORIGINS"),
		Issuer:             issuerFromEnv(),
		Audience:           firstEnv("OAUTH_AUDIENCE", "API_AUDIENCE"),
		JWKSURL:            os.Getenv("OAUTH_JWKS_URL"),
		PolicyFile:         os.Getenv("POLICY_FILE"),
		LogLevel:           strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnvWithDefault("DATABASE_DRIVER", "sqlite")),
			URL:    getEnvWithDefault("DATABASE_URL", "file:database.db"),
		},
	}
	if cfg.CORSAllowedOrigins == nil {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", "30s", &cfg.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", "30s", &cfg.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", "120s", &cfg.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", "30s", &cfg.ShutdownTimeout},
		{"OAUTH_JWKS_CACHE_TTL", "1h", &cfg.JWKSCacheTTL},
		{"OAUTH_JWKS_FETCH_TIMEOUT", "5s", &cfg.JWKSFetchTimeout},
		{"OAUTH_JWKS_MIN_REFRESH_INTERVAL", "30s", &cfg.JWKSMinRefreshInterval},
		{"OAUTH_CLOCK_SKEW", "0s", &cfg.ClockSkew},
		{"DATABASE_CONN_MAX_LIFETIME", "0s", &cfg.Database.ConnMaxLifetime},
	}
	for _, d := range durations {
		v, err := parseDurationWithDefault(d.key, d.fallback)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	var err error
	if cfg.Database.MaxOpenConns, err = parseIntWithDefault("DATABASE_MAX_OPEN_CONNS", 0); err != nil {
		return nil, fmt.Errorf("invalid DATABASE_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.Database.MaxIdleConns, err = parseIntWithDefault("DATABASE_MAX_IDLE_CONNS", 0); err != nil {
		return nil, fmt.Errorf("invalid DATABASE_MAX_IDLE_CONNS: %w", err)
	}
	if cfg.Database.Seed, err = parseBoolWithDefault("DATABASE_SEED", false); err != nil {
		return nil, fmt.Errorf("invalid DATABASE_SEED: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SlogLevel maps LogLevel onto a slog.Level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// issuerFromEnv returns OAUTH_ISSUER, or derives it from AUTH0_DOMAIN.
func issuerFromEnv() string {
	if issuer := os.Getenv("OAUTH_ISSUER"); issuer != "" {
		return issuer
	}
	if domain := strings.TrimSpace(os.Getenv("AUTH0_DOMAIN")); domain != "" {
		return "https://" + strings.TrimSuffix(domain, "/") + "/"
	}
	return ""
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

// getEnvWithDefault returns the environment variable value or the default if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseCommaSeparated parses a comma-separated environment variable into a string slice.
// Empty values are filtered out. Returns nil if the environment variable is not set.
func parseCommaSeparated(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// parseDurationWithDefault parses a duration from an environment variable.
// If the variable is not set, it uses the default value.
// Returns an error if the value is set but cannot be parsed.
func parseDurationWithDefault(key, defaultValue string) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse duration %q: %w", value, err)
	}
	return duration, nil
}

func parseIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse integer %q: %w", value, err)
	}
	return n, nil
}

func parseBoolWithDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("cannot parse boolean %q: %w", value, err)
	}
	return b, nil
}

// String returns a string representation of the configuration (for debugging).
// The database URL is redacted because it may embed credentials.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Addr: %s, BaseURL: %s, ReadTimeout: %v, WriteTimeout: %v, IdleTimeout: %v, Issuer: %s, Audience: %s, JWKSCacheTTL: %v, ClockSkew: %v, DatabaseDriver: %s, DatabaseURL: [redacted], LogLevel: %s}",
		c.Addr, c.BaseURL, c.ReadTimeout, c.WriteTimeout, c.IdleTimeout,
		c.Issuer, c.Audience, c.JWKSCacheTTL, c.ClockSkew,
		c.Database.Driver, c.LogLevel)
}
