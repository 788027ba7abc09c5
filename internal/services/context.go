package services

import "context"

type contextKey string

const (
	queueIDKey   contextKey = "queue_id"
	operationKey contextKey = "operation"
	clientKey    contextKey = "client"
	requestIDKey contextKey = "request_id"
)

// WithQueueID annotates context with the queue (room) identifier.
func WithQueueID(ctx context.Context, queueID string) context.Context {
	if queueID == "" {
		return ctx
	}
	return context.WithValue(ctx, queueIDKey, queueID)
}

// QueueIDFromContext extracts the queue identifier if present.
func QueueIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(queueIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithOperation annotates context with the queue operation being served.
func WithOperation(ctx context.Context, operation string) context.Context {
	if operation == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, operation)
}

// OperationFromContext returns the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(operationKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithClient annotates context with the remote client address.
func WithClient(ctx context.Context, client string) context.Context {
	if client == "" {
		return ctx
	}
	return context.WithValue(ctx, clientKey, client)
}

// ClientFromContext returns the remote client address if present.
func ClientFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(clientKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
