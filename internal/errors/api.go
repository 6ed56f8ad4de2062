package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Machine-readable error tags rendered in the "error" field of the response envelope.
const (
	CodeMissingToken        = "missing_token"
	CodeMalformed           = "malformed"
	CodeInvalidHeader       = "invalid_header"
	CodeTokenExpired        = "token_expired"
	CodeInvalidClaims       = "invalid_claims"
	CodeUnparseable         = "unparseable"
	CodeUnauthorized        = "unauthorized"
	CodeProviderUnavailable = "identity_provider_unavailable"

	CodeBadRequest    = "resource bad request"
	CodeUnprocessable = "resource_unprocessable"
	CodeNotFound      = "no resource found"
	CodeInternal      = "internal_error"
	CodeMethod        = "method_not_allowed"
	CodeUnavailable   = "service_unavailable"
)

// Messages shared by more than one constructor.
const (
	MessageNotFound      = "No row was found when one was required"
	MessageUnprocessable = "Unable to process the request against storage."
	MessageInternal      = "An internal server error occurred"
	MessageMethod        = "Method Not Allowed"
	MessageUnavailable   = "A required dependency is unavailable."
)

// AuthError is an authentication or authorization failure raised while
// checking the caller's bearer token. It always carries a status, a
// machine-readable code and a human message.
type AuthError struct {
	// Status is the HTTP status for this failure (400, 401, 403 or 503).
	Status int

	// Code is the machine-readable tag (e.g., "token_expired").
	Code string

	// Message is a human-readable description safe to show to clients.
	Message string

	// Permission is the permission that was required, if any.
	Permission string

	// Err is the underlying cause. It is logged but never rendered.
	Err error
}

// NewAuthError creates an AuthError.
func NewAuthError(status int, code, message string, err error) *AuthError {
	return &AuthError{Status: status, Code: code, Message: message, Err: err}
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth %d %s: %s: %v", e.Status, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("auth %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel kind implied by the status code.
func (e *AuthError) Is(target error) bool {
	switch e.Status {
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusForbidden:
		return target == ErrForbidden
	case http.StatusServiceUnavailable:
		return target == ErrUnavailable
	default:
		return target == ErrBadRequest
	}
}

// WithPermission records the permission that was required and returns the error for chaining.
func (e *AuthError) WithPermission(permission string) *AuthError {
	e.Permission = permission
	return e
}

// WWWAuthenticate formats the error as a WWW-Authenticate header value per RFC 6750.
//
// Example output:
//
//	Bearer realm="drinks", error="insufficient_scope", error_description="Permission not found.", scope="post:drinks"
func (e *AuthError) WWWAuthenticate(realm, resourceMetadata string) string {
	var parts []string

	if realm != "" {
		parts = append(parts, fmt.Sprintf(`realm="%s"`, escapeQuotes(realm)))
	}

	// RFC 6750 only defines three error codes; everything else maps onto them.
	switch e.Status {
	case http.StatusUnauthorized:
		if e.Code != CodeMissingToken {
			parts = append(parts, `error="invalid_token"`)
		}
	case http.StatusForbidden:
		parts = append(parts, `error="insufficient_scope"`)
	case http.StatusBadRequest:
		parts = append(parts, `error="invalid_request"`)
	}

	if e.Message != "" && e.Code != CodeMissingToken {
		parts = append(parts, fmt.Sprintf(`error_description="%s"`, escapeQuotes(e.Message)))
	}
	if e.Permission != "" {
		parts = append(parts, fmt.Sprintf(`scope="%s"`, escapeQuotes(e.Permission)))
	}
	if resourceMetadata != "" {
		parts = append(parts, fmt.Sprintf(`resource_metadata="%s"`, escapeQuotes(resourceMetadata)))
	}

	if len(parts) == 0 {
		return "Bearer"
	}
	return "Bearer " + strings.Join(parts, ", ")
}

// BadRequestError is a client or storage-processing failure not tied to auth.
// Status is 400 for generic failures and 422 for storage-processing failures.
type BadRequestError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// NewBadRequestError creates a 400 BadRequestError. The message is shown to clients.
func NewBadRequestError(message string, err error) *BadRequestError {
	return &BadRequestError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: "Bad Request: " + message,
		Err:     err,
	}
}

// NewUnprocessableError creates a 422 BadRequestError for storage failures.
// The storage engine's text is kept in Err and never rendered.
func NewUnprocessableError(err error) *BadRequestError {
	return &BadRequestError{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeUnprocessable,
		Message: MessageUnprocessable,
		Err:     err,
	}
}

// Error implements the error interface.
func (e *BadRequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bad request %d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("bad request %d: %s", e.Status, e.Message)
}

// Unwrap returns the underlying cause.
func (e *BadRequestError) Unwrap() error {
	return e.Err
}

// Is matches ErrBadRequest, and ErrUnprocessable for 422 errors.
func (e *BadRequestError) Is(target error) bool {
	if target == ErrBadRequest {
		return true
	}
	return target == ErrUnprocessable && e.Status == http.StatusUnprocessableEntity
}

// NotFoundError reports that a referenced entity id does not exist.
type NotFoundError struct {
	Resource string
	ID       any
}

// NewNotFoundError creates a NotFoundError for the given resource and id.
func NewNotFoundError(resource string, id any) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v: %v", e.Resource, e.ID, ErrNotFound)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MethodNotAllowedError reports a known path requested with a method it
// does not serve.
type MethodNotAllowedError struct {
	Method string
	Path   string
}

// Error implements the error interface.
func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method %s not allowed on %s", e.Method, e.Path)
}

// UnavailableError reports that a dependency the server needs, such as
// the database, is not reachable.
type UnavailableError struct {
	Dependency string
	Err        error
}

// NewUnavailableError creates an UnavailableError for dependency.
func NewUnavailableError(dependency string, err error) *UnavailableError {
	return &UnavailableError{Dependency: dependency, Err: err}
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Dependency, ErrUnavailable, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Dependency, ErrUnavailable)
}

// Unwrap returns the underlying cause.
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is matches ErrUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// Resolution is the client-facing rendering of an error.
type Resolution struct {
	Status  int
	Code    string
	Message string
}

// Resolve maps err onto the typed taxonomy. Anything that is not an
// AuthError, BadRequestError, NotFoundError, MethodNotAllowedError or
// UnavailableError resolves to a generic 500.
func Resolve(err error) Resolution {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return Resolution{Status: authErr.Status, Code: authErr.Code, Message: authErr.Message}
	}

	var badReq *BadRequestError
	if errors.As(err, &badReq) {
		return Resolution{Status: badReq.Status, Code: badReq.Code, Message: badReq.Message}
	}

	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return Resolution{Status: http.StatusNotFound, Code: CodeNotFound, Message: MessageNotFound}
	}

	var method *MethodNotAllowedError
	if errors.As(err, &method) {
		return Resolution{Status: http.StatusMethodNotAllowed, Code: CodeMethod, Message: MessageMethod}
	}

	var unavailable *UnavailableError
	if errors.As(err, &unavailable) {
		return Resolution{Status: http.StatusServiceUnavailable, Code: CodeUnavailable, Message: MessageUnavailable}
	}

	return Resolution{Status: http.StatusInternalServerError, Code: CodeInternal, Message: MessageInternal}
}

// escapeQuotes escapes double quotes in strings for use in header values.
func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
