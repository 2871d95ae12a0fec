// Package context carries population-run information through context.Context.
package context

import (
	"context"
)

// RunContext identifies the population run and the entity currently being populated.
type RunContext struct {
	RunID  string
	Entity string
}

type runContextKey struct{}

// WithRun adds RunContext to context.
func WithRun(ctx context.Context, run *RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, run)
}

// GetRun returns RunContext from context.
func GetRun(ctx context.Context) *RunContext {
	if v, ok := ctx.Value(runContextKey{}).(*RunContext); ok {
		return v
	}
	return nil
}

// WithEntity returns a copy of ctx whose RunContext points at entity.
// The run ID is preserved when present.
func WithEntity(ctx context.Context, entity string) context.Context {
	run := RunContext{Entity: entity}
	if existing := GetRun(ctx); existing != nil {
		run.RunID = existing.RunID
	}
	return WithRun(ctx, &run)
}
