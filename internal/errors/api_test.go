package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "expired token",
			err:        NewAuthError(http.StatusUnauthorized, CodeTokenExpired, "Token expired.", nil),
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeTokenExpired,
		},
		{
			name:       "forbidden",
			err:        NewAuthError(http.StatusForbidden, CodeUnauthorized, "Permission not found.", nil),
			wantStatus: http.StatusForbidden,
			wantCode:   CodeUnauthorized,
		},
		{
			name:       "wrapped auth error keeps its status",
			err:        fmt.Errorf("detail: %w", NewAuthError(http.StatusBadRequest, CodeUnparseable, "x", nil)),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeUnparseable,
		},
		{
			name:       "bad request",
			err:        NewBadRequestError("title is required", nil),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeBadRequest,
		},
		{
			name:       "unprocessable",
			err:        NewUnprocessableError(NewConflictError("Create", errors.New("dup"))),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   CodeUnprocessable,
		},
		{
			name:       "not found",
			err:        NewNotFoundError("drink", 999),
			wantStatus: http.StatusNotFound,
			wantCode:   CodeNotFound,
		},
		{
			name:       "method not allowed",
			err:        &MethodNotAllowedError{Method: http.MethodPut, Path: "/drinks"},
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   CodeMethod,
		},
		{
			name:       "dependency unavailable",
			err:        fmt.Errorf("health: %w", NewUnavailableError("database", errors.New("connection refused"))),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   CodeUnavailable,
		},
		{
			name:       "untyped error",
			err:        errors.New("sql: database is closed"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternal,
		},
		{
			name:       "bare storage error is a defect",
			err:        NewStorageError("ListAll", errors.New("disk I/O error")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Resolve(tt.err)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", got.Status, tt.wantStatus)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestResolve_HidesStorageText(t *testing.T) {
	t.Parallel()

	err := NewUnprocessableError(NewStorageError("Create", errors.New(`pq: relation "drinks" does not exist`)))
	got := Resolve(err)
	if strings.Contains(got.Message, "relation") {
		t.Errorf("Message = %q leaks storage engine text", got.Message)
	}
}

func TestTypedErrors_Is(t *testing.T) {
	t.Parallel()

	if !errors.Is(NewAuthError(http.StatusUnauthorized, CodeMissingToken, "", nil), ErrUnauthorized) {
		t.Error("401 AuthError should match ErrUnauthorized")
	}
	if !errors.Is(NewAuthError(http.StatusForbidden, CodeUnauthorized, "", nil), ErrForbidden) {
		t.Error("403 AuthError should match ErrForbidden")
	}
	if !errors.Is(NewAuthError(http.StatusServiceUnavailable, CodeProviderUnavailable, "", nil), ErrUnavailable) {
		t.Error("503 AuthError should match ErrUnavailable")
	}
	if !errors.Is(NewUnprocessableError(nil), ErrUnprocessable) {
		t.Error("422 BadRequestError should match ErrUnprocessable")
	}
	if errors.Is(NewBadRequestError("x", nil), ErrUnprocessable) {
		t.Error("400 BadRequestError should not match ErrUnprocessable")
	}
	if !errors.Is(NewNotFoundError("drink", 1), ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
}

func TestAuthError_WWWAuthenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		err          *AuthError
		realm        string
		metadata     string
		wantContains []string
		wantExclude  []string
	}{
		{
			name:         "missing token has no error code",
			err:          NewAuthError(http.StatusUnauthorized, CodeMissingToken, "Authentication Token is missing!", nil),
			realm:        "drinks",
			wantContains: []string{`Bearer realm="drinks"`},
			wantExclude:  []string{"error="},
		},
		{
			name:         "expired token",
			err:          NewAuthError(http.StatusUnauthorized, CodeTokenExpired, "Token expired.", nil),
			wantContains: []string{`error="invalid_token"`, `error_description="Token expired."`},
		},
		{
			name:         "insufficient scope",
			err:          NewAuthError(http.StatusForbidden, CodeUnauthorized, "Permission not found.", nil).WithPermission("post:drinks"),
			metadata:     "https://api.example.com/.well-known/oauth-protected-resource",
			wantContains: []string{`error="insufficient_scope"`, `scope="post:drinks"`, `resource_metadata="https://api.example.com/.well-known/oauth-protected-resource"`},
		},
		{
			name:         "quotes escaped",
			err:          NewAuthError(http.StatusBadRequest, CodeUnparseable, `bad "token"`, nil),
			wantContains: []string{`error="invalid_request"`, `bad \"token\"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.err.WWWAuthenticate(tt.realm, tt.metadata)
			if !strings.HasPrefix(got, "Bearer") {
				t.Errorf("WWWAuthenticate() = %q, want Bearer prefix", got)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("WWWAuthenticate() = %q, want to contain %q", got, want)
				}
			}
			for _, exclude := range tt.wantExclude {
				if strings.Contains(got, exclude) {
					t.Errorf("WWWAuthenticate() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}
