package security

import "context"

type ctxKey string

const requestIDKey ctxKey = "RequestID"

// ContextWithRequestID attaches the request id so code below the HTTP layer can log it.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request id or "" when none was attached.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
