package logging

import (
	"context"
	"log/slog"

	"karaoke/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldQueueID is the standardized structured logging key for queue (room) identifiers.
	FieldQueueID = "queue_id"
	// FieldPosition is the standardized structured logging key for queue positions.
	FieldPosition = "position"
	FieldSongID   = "song_id"
	// FieldOperation is the standardized structured logging key for queue operations.
	FieldOperation = "operation"
	// FieldClient is the standardized structured logging key for remote client addresses.
	FieldClient = "client"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.QueueIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldQueueID, id))
	}
	if op, ok := services.OperationFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	if client, ok := services.ClientFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldClient, client))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
