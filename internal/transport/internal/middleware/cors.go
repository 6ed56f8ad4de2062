package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/jamesprial/coffee-shop/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/coffee-shop/pkg/oauth"
)

var (
	corsAllowMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}, ", ")
	corsAllowHeaders = strings.Join([]string{
		pkgoauth.HeaderContentType, pkgoauth.HeaderAuthorization, pkgoauth.HeaderRequestID,
	}, ", ")
	corsExposeHeaders = strings.Join([]string{
		pkgoauth.HeaderWWWAuthenticate, pkgoauth.HeaderRequestID,
	}, ", ")
)

// NewCORSMiddleware creates middleware that sets cross-origin headers for
// allowed origins and answers preflight requests with 204. An empty list
// or "*" allows every origin.
func NewCORSMiddleware(allowedOrigins []string) transportcore.Middleware {
	allowAll := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			if allowAll || slices.Contains(allowedOrigins, origin) {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
				}
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Set("Access-Control-Expose-Headers", corsExposeHeaders)
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
