// Package token verifies RS256 bearer tokens issued by the identity provider.
package token

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jamesprial/coffee-shop/internal/oauth/oautherr"
)

// KeyProvider resolves a signing key by kid.
// This avoids importing the parent oauth package.
type KeyProvider interface {
	GetKey(ctx context.Context, keyID string) (any, error)
}

// TokenClaims represents validated JWT claims from an access token.
type TokenClaims struct {
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time

	// Permissions is the custom "permissions" claim.
	Permissions []string

	// HasPermissionsClaim is false when the claim is absent altogether,
	// which is distinct from an empty list.
	HasPermissionsClaim bool
}

// HasPermission returns true if the token grants the permission.
func (c *TokenClaims) HasPermission(permission string) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Permissions, permission)
}

// signingAlgorithm is the only accepted alg. Pinning it prevents
// algorithm confusion between RSA keys and HMAC secrets.
const signingAlgorithm = "RS256"

// Validator verifies bearer tokens against the provider's key set.
type Validator struct {
	keys      KeyProvider
	audience  string
	issuer    string
	clockSkew time.Duration
}

// NewValidator creates a new token validator.
func NewValidator(keys KeyProvider, audience, issuer string, clockSkew time.Duration) *Validator {
	return &Validator{
		keys:      keys,
		audience:  audience,
		issuer:    issuer,
		clockSkew: clockSkew,
	}
}

// ValidateToken verifies the token and returns its claims.
//
// Failures map onto the auth taxonomy: a header without kid is 401
// malformed, an expired token 401 token_expired, an audience or issuer
// mismatch 401 invalid_claims, and any other decode failure 400 unparseable.
// Key lookup errors from the KeyProvider are returned unchanged.
func (v *Validator) ValidateToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	unverified, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, oautherr.NewUnparseableError(fmt.Errorf("failed to parse token: %w", err))
	}

	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, oautherr.NewMalformedError(oautherr.ErrMissingKeyID)
	}

	if alg, _ := unverified.Header["alg"].(string); alg != signingAlgorithm {
		return nil, oautherr.NewUnparseableError(fmt.Errorf("%w: %q", oautherr.ErrUnsupportedAlgorithm, alg))
	}

	key, err := v.keys.GetKey(ctx, kid)
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingAlgorithm}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithLeeway(v.clockSkew),
	}

	mapClaims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tokenString, mapClaims, func(*jwt.Token) (any, error) {
		return key, nil
	}, opts...)
	if err != nil {
		return nil, classify(err)
	}

	return extractClaims(mapClaims)
}

// classify maps a golang-jwt error onto the auth taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return oautherr.NewTokenExpiredError(err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience), errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return oautherr.NewInvalidClaimsError(err)
	default:
		return oautherr.NewUnparseableError(err)
	}
}

// extractClaims converts verified MapClaims into TokenClaims.
func extractClaims(mapClaims jwt.MapClaims) (*TokenClaims, error) {
	claims := &TokenClaims{}

	claims.Subject, _ = mapClaims.GetSubject()
	claims.Issuer, _ = mapClaims.GetIssuer()
	claims.Audience, _ = mapClaims.GetAudience()

	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	raw, ok := mapClaims["permissions"]
	if !ok {
		return claims, nil
	}
	permissions, err := parsePermissions(raw)
	if err != nil {
		return nil, oautherr.NewUnparseableError(err)
	}
	claims.Permissions = permissions
	claims.HasPermissionsClaim = true

	return claims, nil
}

// parsePermissions accepts the JSON array form of the claim. A null claim
// is treated as present and empty.
func parsePermissions(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case []any:
		permissions := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("permissions claim contains a non-string value")
			}
			permissions = append(permissions, s)
		}
		return permissions, nil
	default:
		return nil, fmt.Errorf("permissions claim must be an array, got %T", raw)
	}
}
