package token

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	ierrors "github.com/jamesprial/coffee-shop/internal/errors"
	"github.com/jamesprial/coffee-shop/internal/oauth/oautherr"
)

const (
	testAudience = "coffee"
	testIssuer   = "https://tenant.example.com/"
	testKeyID    = "test-key"
)

// mockKeyProvider implements KeyProvider for testing.
type mockKeyProvider struct {
	GetKeyFunc func(ctx context.Context, keyID string) (any, error)
}

func (m *mockKeyProvider) GetKey(ctx context.Context, keyID string) (any, error) {
	return m.GetKeyFunc(ctx, keyID)
}

func staticKeys(kid string, key *rsa.PublicKey) *mockKeyProvider {
	return &mockKeyProvider{GetKeyFunc: func(_ context.Context, keyID string) (any, error) {
		if keyID != kid {
			return nil, oautherr.NewKeyNotFoundError(oautherr.ErrKeyNotFound)
		}
		return key, nil
	}}
}

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	return key
}

// createSignedToken creates a signed RS256 JWT for testing.
func createSignedToken(t *testing.T, privateKey *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(privateKey)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":         "auth0|barista",
		"iss":         testIssuer,
		"aud":         testAudience,
		"exp":         time.Now().Add(time.Hour).Unix(),
		"iat":         time.Now().Unix(),
		"permissions": []string{"get:drinks-detail", "post:drinks"},
	}
}

func withClaim(key string, value any) jwt.MapClaims {
	c := validClaims()
	if value == nil {
		delete(c, key)
		return c
	}
	c[key] = value
	return c
}

func TestValidator_ValidateToken_Valid(t *testing.T) {
	t.Parallel()

	key := generateKey(t)
	v := NewValidator(staticKeys(testKeyID, &key.PublicKey), testAudience, testIssuer, 0)

	claims, err := v.ValidateToken(context.Background(), createSignedToken(t, key, testKeyID, validClaims()))
	if err != nil {
		t.Fatalf("ValidateToken() unexpected error: %v", err)
	}
	if claims.Subject != "auth0|barista" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "auth0|barista")
	}
	if claims.Issuer != testIssuer {
		t.Errorf("Issuer = %q, want %q", claims.Issuer, testIssuer)
	}
	if !claims.HasPermissionsClaim {
		t.Error("HasPermissionsClaim = false, want true")
	}
	if !claims.HasPermission("post:drinks") {
		t.Error("HasPermission(post:drinks) = false, want true")
	}
	if claims.HasPermission("delete:drinks") {
		t.Error("HasPermission(delete:drinks) = true, want false")
	}
}

func TestValidator_ValidateToken_AudienceList(t *testing.T) {
	t.Parallel()

	key := generateKey(t)
	v := NewValidator(staticKeys(testKeyID, &key.PublicKey), testAudience, testIssuer, 0)

	claims := withClaim("aud", []string{"https://tenant.example.com/userinfo", testAudience})
	if _, err := v.ValidateToken(context.Background(), createSignedToken(t, key, testKeyID, claims)); err != nil {
		t.Fatalf("ValidateToken() unexpected error: %v", err)
	}
}

func TestValidator_ValidateToken_Permissions(t *testing.T) {
	t.Parallel()

	key := generateKey(t)
	v := NewValidator(staticKeys(testKeyID, &key.PublicKey), testAudience, testIssuer, 0)

	tests := []struct {
		name      string
		claims    jwt.MapClaims
		wantClaim bool
		wantLen   int
	}{
		{name: "absent", claims: withClaim("permissions", nil), wantClaim: false, wantLen: 0},
		{name: "empty list", claims: withClaim("permissions", []string{}), wantClaim: true, wantLen: 0},
		{name: "two entries", claims: validClaims(), wantClaim: true, wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := v.ValidateToken(context.Background(), createSignedToken(t, key, testKeyID, tt.claims))
			if err != nil {
				t.Fatalf("ValidateToken() unexpected error: %v", err)
			}
			if claims.HasPermissionsClaim != tt.wantClaim {
				t.Errorf("HasPermissionsClaim = %v, want %v", claims.HasPermissionsClaim, tt.wantClaim)
			}
			if len(claims.Permissions) != tt.wantLen {
				t.Errorf("len(Permissions) = %d, want %d", len(claims.Permissions), tt.wantLen)
			}
		})
	}
}

func TestValidator_ValidateToken_Failures(t *testing.T) {
	t.Parallel()

	key := generateKey(t)
	otherKey := generateKey(t)

	hmacToken := func(t *testing.T) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
		tok.Header["kid"] = testKeyID
		s, err := tok.SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("Failed to sign token: %v", err)
		}
		return s
	}

	tests := []struct {
		name       string
		token      func(t *testing.T) string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "garbage",
			token:      func(*testing.T) string { return "not-a-jwt" },
			wantStatus: http.StatusBadRequest,
			wantCode:   ierrors.CodeUnparseable,
		},
		{
			name:       "missing kid",
			token:      func(t *testing.T) string { return createSignedToken(t, key, "", validClaims()) },
			wantStatus: http.StatusUnauthorized,
			wantCode:   ierrors.CodeMalformed,
		},
		{
			name:       "unknown kid",
			token:      func(t *testing.T) string { return createSignedToken(t, key, "rotated", validClaims()) },
			wantStatus: http.StatusUnauthorized,
			wantCode:   ierrors.CodeInvalidHeader,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				return createSignedToken(t, key, testKeyID, withClaim("exp", time.Now().Add(-time.Minute).Unix()))
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   ierrors.CodeTokenExpired,
		},
		{
			name: "wrong audience",
			token: func(t *testing.T) string {
				return createSignedToken(t, key, testKeyID, withClaim("aud", "someone-else"))
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   ierrors.CodeInvalidClaims,
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				return createSignedToken(t, key, testKeyID, withClaim("iss", "https://evil.example.com/"))
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   ierrors.CodeInvalidClaims,
		},
		{
			name:       "signed by another key",
			token:      func(t *testing.T) string { return createSignedToken(t, otherKey, testKeyID, validClaims()) },
			wantStatus: http.StatusBadRequest,
			wantCode:   ierrors.CodeUnparseable,
		},
		{
			name: "missing kid, HS256",
			token: func(t *testing.T) string {
				tok := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
				s, err := tok.SignedString([]byte("secret"))
				if err != nil {
					t.Fatalf("Failed to sign token: %v", err)
				}
				return s
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   ierrors.CodeMalformed,
		},
		{
			name: "missing kid, alg none",
			token: func(t *testing.T) string {
				tok := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
				s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
				if err != nil {
					t.Fatalf("Failed to sign token: %v", err)
				}
				return s
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   ierrors.CodeMalformed,
		},
		{
			name:       "hmac algorithm",
			token:      hmacToken,
			wantStatus: http.StatusBadRequest,
			wantCode:   ierrors.CodeUnparseable,
		},
		{
			name: "missing exp",
			token: func(t *testing.T) string {
				return createSignedToken(t, key, testKeyID, withClaim("exp", nil))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   ierrors.CodeUnparseable,
		},
		{
			name: "permissions not a list",
			token: func(t *testing.T) string {
				return createSignedToken(t, key, testKeyID, withClaim("permissions", "post:drinks"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   ierrors.CodeUnparseable,
		},
	}

	v := NewValidator(staticKeys(testKeyID, &key.PublicKey), testAudience, testIssuer, 0)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := v.ValidateToken(context.Background(), tt.token(t))
			var authErr *ierrors.AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("ValidateToken() error = %v, want *AuthError", err)
			}
			if authErr.Status != tt.wantStatus || authErr.Code != tt.wantCode {
				t.Errorf("ValidateToken() = (%d, %q), want (%d, %q)", authErr.Status, authErr.Code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestValidator_ValidateToken_ClockSkew(t *testing.T) {
	t.Parallel()

	key := generateKey(t)
	v := NewValidator(staticKeys(testKeyID, &key.PublicKey), testAudience, testIssuer, time.Minute)

	claims := withClaim("exp", time.Now().Add(-10*time.Second).Unix())
	if _, err := v.ValidateToken(context.Background(), createSignedToken(t, key, testKeyID, claims)); err != nil {
		t.Errorf("ValidateToken() within leeway error = %v", err)
	}
}

func TestValidator_ValidateToken_KeyProviderErrorPassesThrough(t *testing.T) {
	t.Parallel()

	key := generateKey(t)
	unavailable := oautherr.NewUnavailableError(errors.New("dial tcp: connection refused"))
	provider := &mockKeyProvider{GetKeyFunc: func(context.Context, string) (any, error) {
		return nil, unavailable
	}}
	v := NewValidator(provider, testAudience, testIssuer, 0)

	_, err := v.ValidateToken(context.Background(), createSignedToken(t, key, testKeyID, validClaims()))
	if !errors.Is(err, ierrors.ErrUnavailable) {
		t.Errorf("ValidateToken() error = %v, want ErrUnavailable", err)
	}
}

func TestTokenClaims_HasPermission_Nil(t *testing.T) {
	t.Parallel()

	var c *TokenClaims
	if c.HasPermission("get:drinks") {
		t.Error("nil claims HasPermission() = true, want false")
	}
}
