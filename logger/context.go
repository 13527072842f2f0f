package logger

import "context"

// contextKey is an unexported type for context keys to avoid collisions.
type contextKey string

var contextFields = []contextKey{
	contextKey(FieldRequestID),
	contextKey(FieldTraceID),
	contextKey(FieldSpanID),
}

// ContextWithRequestID stores a request ID picked up by WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey(FieldRequestID), id)
}

// RequestIDFromContext returns the request ID stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(contextKey(FieldRequestID)).(string)
	return v
}

// ContextWithTrace stores trace and span IDs picked up by WithContext.
func ContextWithTrace(ctx context.Context, traceID, spanID string) context.Context {
	ctx = context.WithValue(ctx, contextKey(FieldTraceID), traceID)
	return context.WithValue(ctx, contextKey(FieldSpanID), spanID)
}
