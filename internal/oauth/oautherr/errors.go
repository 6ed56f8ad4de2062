// Package oautherr provides constructors for every authentication and
// authorization failure. It is separate from internal/oauth so the token
// and jwks subpackages can build the same errors without an import cycle.
package oautherr

import (
	"errors"
	"net/http"

	ierrors "github.com/jamesprial/coffee-shop/internal/errors"
)

// Client-facing messages.
const (
	MessageMissingToken       = "Authentication Token is missing!"
	MessageMalformed          = "Authorization malformed."
	MessageInvalidHeader      = "Unable to find the appropriate key."
	MessageTokenExpired       = "Token expired."
	MessageInvalidClaims      = "Incorrect claims. Please, check the audience and issuer."
	MessageUnparseable        = "Unable to parse authentication token."
	MessageMissingPermissions = "Permissions not included in token."
	MessageForbidden          = "Permission not found."
	MessageUnavailable        = "Identity provider is unavailable."
)

// NewMissingTokenError reports an absent or malformed Authorization header.
func NewMissingTokenError(err error) *ierrors.AuthError {
	return ierrors.NewAuthError(http.StatusUnauthorized, ierrors.CodeMissingToken, MessageMissingToken, err)
}

// NewMalformedError reports a token header without a key id.
func NewMalformedError(err error) *ierrors.AuthError {
	return ierrors.NewAuthError(http.StatusUnauthorized, ierrors.CodeMalformed, MessageMalformed, err)
}

// NewKeyNotFoundError reports a key id absent from the provider's key set.
func NewKeyNotFoundError(err error) *ierrors.AuthError {
	return ierrors.NewAuthError(http.StatusUnauthorized, ierrors.CodeInvalidHeader, MessageInvalidHeader, err)
}

// NewTokenExpiredError reports a token whose exp has passed.
func NewTokenExpiredError(err error) *ierrors.AuthError {
	return ierrors.NewAuthError(http.StatusUnauthorized, ierrors.CodeTokenExpired, MessageTokenExpired, err)
}

// NewInvalidClaimsError reports an audience or issuer mismatch.
func NewInvalidClaimsError(err error) *ierrors.AuthError {
	return ierrors.NewAuthError(http.StatusUnauthorized, ierrors.CodeInvalidClaims, MessageInvalidClaims, err)
}

// NewUnparseableError reports any other decode or signature failure.
func NewUnparseableError(err error) *ierrors.AuthError {
	return ierrors.NewAuthError(http.StatusBadRequest, ierrors.CodeUnparseable, MessageUnparseable, err)
}

// NewMissingPermissionsError reports a verified token without a permissions claim.
func NewMissingPermissionsError() *ierrors.AuthError {
	return ierrors.NewAuthError(http.StatusBadRequest, ierrors.CodeInvalidClaims, MessageMissingPermissions, nil)
}

// NewForbiddenError reports a token lacking the required permission.
func NewForbiddenError(permission string) *ierrors.AuthError {
	return ierrors.NewAuthError(http.StatusForbidden, ierrors.CodeUnauthorized, MessageForbidden, nil).
		WithPermission(permission)
}

// NewUnavailableError reports a key set fetch failure or timeout.
func NewUnavailableError(err error) *ierrors.AuthError {
	return ierrors.NewAuthError(http.StatusServiceUnavailable, ierrors.CodeProviderUnavailable, MessageUnavailable, err)
}

// Sentinel causes wrapped inside AuthError values. They identify the
// failure in logs and tests; the client only sees the AuthError.
var (
	ErrMissingKeyID         = errors.New("missing kid in token header")
	ErrKeyNotFound          = errors.New("key not found")
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrJWKSFetchFailed      = errors.New("jwks fetch failed")
	ErrMalformedHeader      = errors.New("authorization header must be a Bearer token")
)
