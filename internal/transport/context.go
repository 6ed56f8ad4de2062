package transport

import (
	"context"

	"github.com/jamesprial/coffee-shop/internal/transport/transportcore"
)

// RequestIDContextKey is the context key for the request correlation id.
const RequestIDContextKey = transportcore.RequestIDContextKey

// RequestIDFromContext extracts the request id set by the logging middleware.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return transportcore.RequestIDFromContext(ctx)
}

// ContextWithRequestID adds the request id to the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return transportcore.ContextWithRequestID(ctx, id)
}
