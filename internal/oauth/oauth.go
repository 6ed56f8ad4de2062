// Package oauth verifies the identity provider's bearer tokens and gates
// drink use cases on the permissions they carry. The API acts as an
// OAuth resource server; tokens are issued elsewhere.
package oauth

import (
	"context"
	"slices"
	"time"
)

// TokenVerifier validates access tokens issued by the identity provider.
type TokenVerifier interface {
	// Verify checks the token's RS256 signature against the provider's key
	// set, then its audience, issuer and expiry, and returns the claims.
	//
	// Failures are *errors.AuthError values from internal/errors.
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Claims represents the verified contents of a bearer token.
type Claims struct {
	// Subject is the sub claim, typically the user identifier.
	Subject string

	// Issuer is the iss claim.
	Issuer string

	// Audience is the aud claim.
	Audience []string

	// Permissions is the custom "permissions" claim.
	Permissions []string

	// HasPermissionsClaim reports whether the token carried a permissions
	// claim at all. An absent claim differs from an empty one.
	HasPermissionsClaim bool

	// ExpiresAt is the exp claim.
	ExpiresAt time.Time

	// IssuedAt is the iat claim.
	IssuedAt time.Time
}

// HasPermission returns true if the token grants the permission.
func (c *Claims) HasPermission(permission string) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Permissions, permission)
}

// MetadataService provides Protected Resource Metadata per RFC 9728 so
// clients can discover which issuer and permissions the API expects.
type MetadataService interface {
	// GetMetadata returns the protected resource metadata document.
	GetMetadata(ctx context.Context) (*ProtectedResourceMetadata, error)

	// GetMetadataURL returns the canonical URL where this metadata is served.
	GetMetadataURL() string
}

// ProtectedResourceMetadata represents the OAuth 2.0 Protected Resource
// Metadata as defined in RFC 9728.
type ProtectedResourceMetadata struct {
	// Resource is the API identifier; it matches the token "aud".
	Resource string `json:"resource"`

	// AuthorizationServers lists the trusted token issuers.
	AuthorizationServers []string `json:"authorization_servers"`

	// ScopesSupported lists the permissions this API checks.
	ScopesSupported []string `json:"scopes_supported,omitempty"`

	// BearerMethodsSupported is always ["header"].
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
}

// JWKSClient fetches and caches the identity provider's key set.
type JWKSClient interface {
	// GetKey returns the public key for kid, refetching the set when the
	// cache is stale or the kid is unknown.
	GetKey(ctx context.Context, keyID string) (any, error)

	// RefreshKeys forces a refetch of the key set.
	RefreshKeys(ctx context.Context) error
}
