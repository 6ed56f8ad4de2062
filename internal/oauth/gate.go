package oauth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	ierrors "github.com/jamesprial/coffee-shop/internal/errors"
	"github.com/jamesprial/coffee-shop/internal/metrics"
	"github.com/jamesprial/coffee-shop/internal/oauth/oautherr"
	pkgoauth "github.com/jamesprial/coffee-shop/pkg/oauth"
)

// Gate enforces a permission before a use case runs. Use cases call
// Require first thing, passing the raw Authorization header value.
type Gate struct {
	verifier TokenVerifier
}

// NewGate creates a permission gate backed by verifier.
func NewGate(verifier TokenVerifier) *Gate {
	if verifier == nil {
		panic("oauth: verifier cannot be nil")
	}
	return &Gate{verifier: verifier}
}

// Require extracts the bearer token from authorization, verifies it and
// checks that it grants permission. On success it returns the claims and
// the caller proceeds unchanged; on failure it returns an *AuthError.
func (g *Gate) Require(ctx context.Context, authorization, permission string) (*Claims, error) {
	token, err := BearerToken(authorization)
	if err != nil {
		return nil, g.reject(err, permission)
	}

	claims, err := g.verifier.Verify(ctx, token)
	if err != nil {
		return nil, g.reject(err, permission)
	}

	if err := Check(claims, permission); err != nil {
		return nil, g.reject(err, permission)
	}
	return claims, nil
}

// reject records the failure and tags auth errors with the permission so
// the challenge header can advertise it.
func (g *Gate) reject(err error, permission string) error {
	var authErr *ierrors.AuthError
	if errors.As(err, &authErr) && authErr.Permission == "" && authErr.Status == http.StatusUnauthorized {
		authErr.WithPermission(permission)
	}

	res := ierrors.Resolve(err)
	metrics.RecordAuthFailure(res.Code)
	slog.Debug("request rejected by permission gate",
		"permission", permission,
		"code", res.Code,
		"error", err,
	)
	return err
}

// Check verifies already-validated claims grant permission.
// A token with no permissions claim is 400 invalid_claims; a claim that
// lacks the permission is 403 unauthorized.
func Check(claims *Claims, permission string) error {
	if claims == nil || !claims.HasPermissionsClaim {
		return oautherr.NewMissingPermissionsError()
	}
	if !claims.HasPermission(permission) {
		return oautherr.NewForbiddenError(permission)
	}
	return nil
}

// BearerToken extracts the token from an Authorization header value.
// The header must be exactly two space-separated parts, "Bearer <token>",
// with the scheme matched case-insensitively.
func BearerToken(authorization string) (string, error) {
	if authorization == "" {
		return "", oautherr.NewMissingTokenError(nil)
	}

	parts := strings.Split(authorization, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], pkgoauth.BearerToken) || parts[1] == "" {
		return "", oautherr.NewMissingTokenError(oautherr.ErrMalformedHeader)
	}
	return parts[1], nil
}
