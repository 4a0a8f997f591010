package logging

import (
	"context"
	"log/slog"

	"formatrisk/internal/services"
)

// Structured field keys shared by every formatrisk logger. Run, accession
// and stage are filled from the context by WithContext; the rest are set by
// the call site.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldAccession = "accession"
	FieldStage     = "stage"
	FieldPath      = "path"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	// FieldImpact carries the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	lookups := []struct {
		key    string
		lookup func(context.Context) (string, bool)
	}{
		{FieldRunID, services.RunIDFromContext},
		{FieldAccession, services.AccessionFromContext},
		{FieldStage, services.StageFromContext},
	}
	var fields []slog.Attr
	for _, l := range lookups {
		if value, ok := l.lookup(ctx); ok {
			fields = append(fields, slog.String(l.key, value))
		}
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
