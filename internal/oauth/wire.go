package oauth

import (
	"context"
	"strings"
	"time"

	"github.com/jamesprial/coffee-shop/internal/oauth/internal/jwks"
	"github.com/jamesprial/coffee-shop/internal/oauth/internal/metadata"
	"github.com/jamesprial/coffee-shop/internal/oauth/internal/token"
)

// tokenVerifierAdapter adapts token.Validator to the oauth.TokenVerifier interface.
type tokenVerifierAdapter struct {
	validator *token.Validator
}

func (a *tokenVerifierAdapter) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := a.validator.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return &Claims{
		Subject:             claims.Subject,
		Issuer:              claims.Issuer,
		Audience:            claims.Audience,
		Permissions:         claims.Permissions,
		HasPermissionsClaim: claims.HasPermissionsClaim,
		ExpiresAt:           claims.ExpiresAt,
		IssuedAt:            claims.IssuedAt,
	}, nil
}

// metadataServiceAdapter adapts metadata.Service to the oauth.MetadataService interface.
type metadataServiceAdapter struct {
	service *metadata.Service
}

func (a *metadataServiceAdapter) GetMetadata(ctx context.Context) (*ProtectedResourceMetadata, error) {
	meta, err := a.service.GetMetadata(ctx)
	if err != nil {
		return nil, err
	}
	if err := metadata.ValidateMetadata(meta); err != nil {
		return nil, err
	}
	return &ProtectedResourceMetadata{
		Resource:               meta.Resource,
		AuthorizationServers:   meta.AuthorizationServers,
		ScopesSupported:        meta.ScopesSupported,
		BearerMethodsSupported: meta.BearerMethodsSupported,
	}, nil
}

func (a *metadataServiceAdapter) GetMetadataURL() string {
	return a.service.GetMetadataURL()
}

// Config holds the configuration needed to construct OAuth services.
type Config struct {
	// BaseURL is where this API is reachable; used for the metadata URL.
	BaseURL string

	// Issuer is the expected iss claim, e.g. "https://tenant.auth0.com/".
	Issuer string

	// Audience is the expected aud claim (the API identifier).
	Audience string

	// JWKSURL is the key set location. Empty derives it from Issuer.
	JWKSURL string

	// Permissions lists the permissions advertised in metadata.
	Permissions []string

	// JWKSCacheTTL is how long a fetched key set is served.
	JWKSCacheTTL time.Duration

	// JWKSFetchTimeout bounds a single key set fetch.
	JWKSFetchTimeout time.Duration

	// JWKSMinRefreshInterval rate-limits refetches caused by unknown kids.
	JWKSMinRefreshInterval time.Duration

	// ClockSkew is the allowed leeway for exp validation.
	ClockSkew time.Duration
}

// JWKSURLFor derives the provider's key set location from its issuer URL.
func JWKSURLFor(issuer string) string {
	return strings.TrimRight(issuer, "/") + "/.well-known/jwks.json"
}

// NewJWKSClient creates a new JWKS client with the provided configuration.
func NewJWKSClient(cfg *Config) JWKSClient {
	url := cfg.JWKSURL
	if url == "" {
		url = JWKSURLFor(cfg.Issuer)
	}
	return jwks.NewClient(url, jwks.Options{
		CacheTTL:           cfg.JWKSCacheTTL,
		FetchTimeout:       cfg.JWKSFetchTimeout,
		MinRefreshInterval: cfg.JWKSMinRefreshInterval,
	})
}

// NewTokenVerifier creates a verifier that checks signatures with keys from
// jwksClient and validates audience, issuer and expiry.
func NewTokenVerifier(cfg *Config, jwksClient JWKSClient) TokenVerifier {
	validator := token.NewValidator(jwksClient, cfg.Audience, cfg.Issuer, cfg.ClockSkew)
	return &tokenVerifierAdapter{validator: validator}
}

// NewMetadataService creates a new protected resource metadata service.
func NewMetadataService(cfg *Config) MetadataService {
	service := metadata.NewService(cfg.BaseURL, cfg.Audience, []string{cfg.Issuer}, cfg.Permissions)
	return &metadataServiceAdapter{service: service}
}

// NewOAuthServices creates all OAuth services from the configuration.
// This is a convenience function for dependency injection.
func NewOAuthServices(cfg *Config) (*Gate, TokenVerifier, MetadataService, JWKSClient) {
	jwksClient := NewJWKSClient(cfg)
	verifier := NewTokenVerifier(cfg, jwksClient)
	metadataService := NewMetadataService(cfg)
	gate := NewGate(verifier)

	return gate, verifier, metadataService, jwksClient
}
