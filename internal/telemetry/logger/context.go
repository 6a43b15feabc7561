package logger

import "context"

type requestIDKey struct{}

// WithRequestID stamps the request ID assigned by the HTTP middleware
// onto the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the stamped request ID, or "" when the
// request never passed through the middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
