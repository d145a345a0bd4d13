package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one autocut invocation.
	FieldRunID = "run_id"
	// FieldStage is the pipeline stage (fingerprint, scan, splice, ...).
	FieldStage = "stage"
	// FieldInput names the input file or episode being processed.
	FieldInput = "input"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags warnings or anomalies that should stand out.
	FieldAlert = "alert"
)

type contextKey int

const (
	runIDKey contextKey = iota
	stageKey
	inputKey
)

// WithRunID tags ctx with a run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// WithStage tags ctx with the current pipeline stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey, stage)
}

// WithInput tags ctx with the input being processed.
func WithInput(ctx context.Context, input string) context.Context {
	return context.WithValue(ctx, inputKey, input)
}

// RunIDFromContext returns the run id stored in ctx.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, runIDKey)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(key).(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// ContextFields extracts standardized slog attributes from ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	fields := make([]slog.Attr, 0, 3)
	if id, ok := stringValue(ctx, runIDKey); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if stage, ok := stringValue(ctx, stageKey); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if input, ok := stringValue(ctx, inputKey); ok {
		fields = append(fields, slog.String(FieldInput, input))
	}
	return fields
}

// WithContext returns a logger augmented with the fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(toArgs(fields)...)
}
