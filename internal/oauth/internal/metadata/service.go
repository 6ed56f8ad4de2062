// Package metadata serves RFC 9728 protected resource metadata for the drinks API.
package metadata

import (
	"context"
	"fmt"
	"strings"
)

// WellKnownPath is where the metadata document is served.
const WellKnownPath = "/.well-known/oauth-protected-resource"

// ProtectedResourceMetadata represents the OAuth 2.0 Protected Resource
// Metadata as defined in RFC 9728.
type ProtectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
}

// Service provides Protected Resource Metadata per RFC 9728.
type Service struct {
	resource             string
	authorizationServers []string
	scopesSupported      []string
	metadataURL          string
}

// NewService creates a new metadata service.
//
// Parameters:
//   - baseURL: where this API is reachable (e.g., "https://coffee.example.com")
//   - resource: the API identifier tokens are issued for; the expected "aud"
//   - authorizationServers: issuer URLs trusted to sign tokens
//   - scopesSupported: permissions the API checks
func NewService(baseURL, resource string, authorizationServers, scopesSupported []string) *Service {
	return &Service{
		resource:             resource,
		authorizationServers: authorizationServers,
		scopesSupported:      scopesSupported,
		metadataURL:          normalizeBaseURL(baseURL) + WellKnownPath,
	}
}

// GetMetadata returns the protected resource metadata document.
func (s *Service) GetMetadata(_ context.Context) (*ProtectedResourceMetadata, error) {
	return &ProtectedResourceMetadata{
		Resource:               s.resource,
		AuthorizationServers:   append([]string(nil), s.authorizationServers...),
		ScopesSupported:        append([]string(nil), s.scopesSupported...),
		BearerMethodsSupported: []string{"header"},
	}, nil
}

// GetMetadataURL returns the canonical URL where this metadata is served.
func (s *Service) GetMetadataURL() string {
	return s.metadataURL
}

// normalizeBaseURL strips trailing slashes so the well-known path joins cleanly.
func normalizeBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}

// ValidateMetadata validates the metadata document per RFC 9728.
func ValidateMetadata(metadata *ProtectedResourceMetadata) error {
	if metadata.Resource == "" {
		return fmt.Errorf("resource field is required")
	}

	if len(metadata.AuthorizationServers) == 0 {
		return fmt.Errorf("authorization_servers field must contain at least one server")
	}

	for _, server := range metadata.AuthorizationServers {
		if server == "" {
			return fmt.Errorf("authorization server URL cannot be empty")
		}
		if !strings.HasPrefix(server, "https://") && !strings.HasPrefix(server, "http://localhost") &&
			!strings.HasPrefix(server, "http://127.0.0.1") {
			return fmt.Errorf("authorization server URL must use HTTPS (or http://localhost for testing): %s", server)
		}
	}

	return nil
}
