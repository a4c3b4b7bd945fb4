package logging

import (
	"context"
	"log/slog"

	"fileconv/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldStage is the standardized structured logging key for flow stage names.
	FieldStage = "stage"
	// FieldRequestID is the standardized key for per-attempt correlation identifiers.
	FieldRequestID = "request_id"
	// FieldHandle is the server-assigned file handle.
	FieldHandle = "handle"
	// FieldCategory is the file category reported by the upload service.
	FieldCategory = "category"
	// FieldTargetFormat is the requested conversion format code.
	FieldTargetFormat = "target_format"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRequestID, rid))
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
