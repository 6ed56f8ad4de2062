package oauth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	ierrors "github.com/jamesprial/coffee-shop/internal/errors"
)

func TestJWKSURLFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		issuer string
		want   string
	}{
		{issuer: "https://tenant.auth0.com/", want: "https://tenant.auth0.com/.well-known/jwks.json"},
		{issuer: "https://tenant.auth0.com", want: "https://tenant.auth0.com/.well-known/jwks.json"},
	}

	for _, tt := range tests {
		if got := JWKSURLFor(tt.issuer); got != tt.want {
			t.Errorf("JWKSURLFor(%q) = %q, want %q", tt.issuer, got, tt.want)
		}
	}
}

func TestNewMetadataService(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		BaseURL:     "http://localhost:8080",
		Issuer:      "https://tenant.auth0.com/",
		Audience:    "coffee",
		Permissions: []string{"get:drinks-detail"},
	}

	service := NewMetadataService(cfg)
	meta, err := service.GetMetadata(context.Background())
	if err != nil {
		t.Fatalf("GetMetadata() unexpected error: %v", err)
	}
	if meta.Resource != "coffee" {
		t.Errorf("Resource = %q, want %q", meta.Resource, "coffee")
	}
	if len(meta.AuthorizationServers) != 1 || meta.AuthorizationServers[0] != cfg.Issuer {
		t.Errorf("AuthorizationServers = %v, want [%s]", meta.AuthorizationServers, cfg.Issuer)
	}
	if got, want := service.GetMetadataURL(), "http://localhost:8080/.well-known/oauth-protected-resource"; got != want {
		t.Errorf("GetMetadataURL() = %q, want %q", got, want)
	}
}

func TestNewMetadataService_InvalidIssuer(t *testing.T) {
	t.Parallel()

	service := NewMetadataService(&Config{BaseURL: "http://localhost:8080", Issuer: "http://insecure.example.com/", Audience: "coffee"})
	if _, err := service.GetMetadata(context.Background()); err == nil {
		t.Error("GetMetadata() with plain-http issuer should fail validation")
	}
}

// TestNewOAuthServices_EndToEnd wires the gate, verifier and JWKS client
// against a local key set endpoint.
func TestNewOAuthServices_EndToEnd(t *testing.T) {
	t.Parallel()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}

	jwksServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"use": "sig",
				"kid": "k1",
				"n":   base64.RawURLEncoding.EncodeToString(privateKey.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(privateKey.E)).Bytes()),
			}},
		})
	}))
	t.Cleanup(jwksServer.Close)

	cfg := &Config{
		BaseURL:                "http://localhost:8080",
		Issuer:                 "https://tenant.auth0.com/",
		Audience:               "coffee",
		JWKSURL:                jwksServer.URL,
		JWKSCacheTTL:           time.Hour,
		JWKSFetchTimeout:       time.Second,
		JWKSMinRefreshInterval: time.Second,
	}
	gate, verifier, metadataService, jwksClient := NewOAuthServices(cfg)
	if gate == nil || verifier == nil || metadataService == nil || jwksClient == nil {
		t.Fatal("NewOAuthServices() returned nil service")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":         "auth0|manager",
		"iss":         cfg.Issuer,
		"aud":         cfg.Audience,
		"exp":         time.Now().Add(time.Hour).Unix(),
		"permissions": []string{"delete:drinks"},
	})
	token.Header["kid"] = "k1"
	signed, err := token.SignedString(privateKey)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	claims, err := gate.Require(context.Background(), "Bearer "+signed, "delete:drinks")
	if err != nil {
		t.Fatalf("Require() unexpected error: %v", err)
	}
	if claims.Subject != "auth0|manager" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "auth0|manager")
	}

	_, err = gate.Require(context.Background(), "Bearer "+signed, "post:drinks")
	if !errors.Is(err, ierrors.ErrForbidden) {
		t.Errorf("Require(post:drinks) error = %v, want ErrForbidden", err)
	}
}
