package agent

import (
	"context"

	"github.com/agentwire/agentwire/core"
)

// IntentFunc adapts a plain function to the IntentAgent contract.
type IntentFunc func(ctx context.Context, request map[string]any) (map[string]any, error)

// Understand calls f.
func (f IntentFunc) Understand(ctx context.Context, request map[string]any) (map[string]any, error) {
	return f(ctx, request)
}

// RecommenderFunc adapts a plain function to the RecommenderAgent contract.
type RecommenderFunc func(ctx context.Context, intent map[string]any) (map[string]any, error)

// Recommend calls f.
func (f RecommenderFunc) Recommend(ctx context.Context, intent map[string]any) (map[string]any, error) {
	return f(ctx, intent)
}

// ExecutorFunc adapts a plain function to the ExecutorAgent contract.
type ExecutorFunc func(ctx context.Context, in core.ExecutionInput) (map[string]any, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, in core.ExecutionInput) (map[string]any, error) {
	return f(ctx, in)
}

// CheckerFunc adapts a plain function to the CheckerAgent contract.
type CheckerFunc func(ctx context.Context, intent, execution map[string]any) (core.CheckOutcome, error)

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context, intent, execution map[string]any) (core.CheckOutcome, error) {
	return f(ctx, intent, execution)
}
