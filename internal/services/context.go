package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	accessionKey contextKey = "accession"
	stageKey     contextKey = "stage"
)

// WithRunID annotates context with the analysis run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(runIDKey).(string)
	return v, ok && v != ""
}

// WithAccession annotates context with the accession being analysed.
func WithAccession(ctx context.Context, accession string) context.Context {
	if accession == "" {
		return ctx
	}
	return context.WithValue(ctx, accessionKey, accession)
}

// AccessionFromContext returns the accession name if present.
func AccessionFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(accessionKey).(string)
	return v, ok && v != ""
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(stageKey).(string)
	return v, ok && v != ""
}
