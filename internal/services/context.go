package services

import "context"

type contextKey string

const (
	operationKey contextKey = "operation"
	runIDKey     contextKey = "run_id"
)

// WithOperation annotates context with the running command (bind, split, slide).
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey, operation)
}

// OperationFromContext extracts the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(operationKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithRunID annotates context with the workspace run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the workspace run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(runIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
