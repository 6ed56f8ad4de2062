package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that the configuration is valid and complete.
// It returns an error if required fields are missing or values are invalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(cfg); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := validateOAuth(cfg); err != nil {
		return fmt.Errorf("invalid oauth config: %w", err)
	}

	if err := validateDatabase(&cfg.Database); err != nil {
		return fmt.Errorf("invalid database config: %w", err)
	}

	return nil
}

// isLocalhost returns true if the host is localhost or a loopback address.
// It handles bare hostnames and host:port combinations.
func isLocalhost(host string) bool {
	hostname := host
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.HasSuffix(host, "]") {
		hostname = host[:i]
	}
	return hostname == "localhost" || hostname == "127.0.0.1"
}

// validateHTTPURL checks raw is an absolute http(s) URL, with plain http
// only allowed for loopback hosts.
func validateHTTPURL(name, raw string) error {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if !parsedURL.IsAbs() {
		return fmt.Errorf("%s must be an absolute URL", name)
	}
	if parsedURL.Scheme != "https" && parsedURL.Scheme != "http" {
		return fmt.Errorf("%s must use http or https scheme", name)
	}
	if parsedURL.Scheme == "http" && !isLocalhost(parsedURL.Host) {
		return fmt.Errorf("%s must use https scheme for non-localhost hosts", name)
	}
	return nil
}

// validateServer validates the server-related fields.
func validateServer(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}

	if cfg.BaseURL == "" {
		return fmt.Errorf("SERVER_BASE_URL is required")
	}
	if err := validateHTTPURL("SERVER_BASE_URL", cfg.BaseURL); err != nil {
		return err
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}
	// 0 means no idle timeout.
	if cfg.IdleTimeout < 0 {
		return fmt.Errorf("SERVER_IDLE_TIMEOUT must be non-negative")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	return nil
}

// validateOAuth validates the OAuth-related fields.
func validateOAuth(cfg *Config) error {
	if cfg.Issuer == "" {
		return fmt.Errorf("OAUTH_ISSUER (or AUTH0_DOMAIN) is required")
	}
	if err := validateHTTPURL("OAUTH_ISSUER", cfg.Issuer); err != nil {
		return err
	}

	// Auth0 API identifiers need not be URLs, so any non-blank value is accepted.
	if strings.TrimSpace(cfg.Audience) == "" {
		return fmt.Errorf("OAUTH_AUDIENCE (or API_AUDIENCE) is required")
	}

	if cfg.JWKSURL != "" {
		if err := validateHTTPURL("OAUTH_JWKS_URL", cfg.JWKSURL); err != nil {
			return err
		}
	}

	if cfg.JWKSCacheTTL <= 0 {
		return fmt.Errorf("OAUTH_JWKS_CACHE_TTL must be positive")
	}
	if cfg.JWKSFetchTimeout <= 0 {
		return fmt.Errorf("OAUTH_JWKS_FETCH_TIMEOUT must be positive")
	}
	if cfg.JWKSMinRefreshInterval < 0 {
		return fmt.Errorf("OAUTH_JWKS_MIN_REFRESH_INTERVAL must be non-negative")
	}
	if cfg.ClockSkew < 0 {
		return fmt.Errorf("OAUTH_CLOCK_SKEW must be non-negative")
	}

	return nil
}

// validateDatabase validates the storage settings.
func validateDatabase(db *DatabaseConfig) error {
	switch db.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", db.Driver)
	}
	if strings.TrimSpace(db.URL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if db.MaxOpenConns < 0 || db.MaxIdleConns < 0 {
		return fmt.Errorf("DATABASE pool sizes must be non-negative")
	}
	if db.ConnMaxLifetime < 0 {
		return fmt.Errorf("DATABASE_CONN_MAX_LIFETIME must be non-negative")
	}
	return nil
}
