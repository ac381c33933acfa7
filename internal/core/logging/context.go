package logging

import "context"

type contextKey string

const (
	scriptKey contextKey = "script"
	stepKey   contextKey = "step"
)

// WithScript adds the name of the replay script being run to the context.
func WithScript(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, scriptKey, name)
}

// WithStep adds the index of the current script step to the context.
func WithStep(ctx context.Context, step int) context.Context {
	return context.WithValue(ctx, stepKey, step)
}

// GetScript returns the script name from the context, or "" if not present.
func GetScript(ctx context.Context) string {
	if name, ok := ctx.Value(scriptKey).(string); ok {
		return name
	}
	return ""
}

// GetStep returns the step index from the context. ok is false if not present.
func GetStep(ctx context.Context) (step int, ok bool) {
	step, ok = ctx.Value(stepKey).(int)
	return step, ok
}
