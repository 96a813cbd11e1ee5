package core

import "context"

// Role identifies one independently-addressable worker in the workflow. A
// role has at most one live instance at a time; registering a new instance
// replaces the previous one.
type Role string

const (
	// RoleIntent turns a raw user request into a structured intent record.
	RoleIntent Role = "intent"
	// RoleRecommender produces ranked candidates from an intent record.
	RoleRecommender Role = "recommender"
	// RoleExecutor acts on the intent and candidates, one attempt per
	// loop iteration.
	RoleExecutor Role = "executor"
	// RoleChecker judges how well an execution outcome met the intent.
	RoleChecker Role = "checker"
)

// ExecutionInput is the executor role's per-iteration input. Guidance holds
// the previous iteration's improvement suggestions, closing the feedback
// loop between checker and executor.
type ExecutionInput struct {
	Intent     map[string]any `json:"intent"`
	Candidates map[string]any `json:"candidates"`
	Iteration  int            `json:"iteration"`
	Guidance   []string       `json:"guidance,omitempty"`
}

// IntentAgent is the operation contract for the intent role.
type IntentAgent interface {
	Understand(ctx context.Context, request map[string]any) (map[string]any, error)
}

// RecommenderAgent is the operation contract for the recommender role.
type RecommenderAgent interface {
	Recommend(ctx context.Context, intent map[string]any) (map[string]any, error)
}

// ExecutorAgent is the operation contract for the executor role.
type ExecutorAgent interface {
	Execute(ctx context.Context, in ExecutionInput) (map[string]any, error)
}

// CheckerAgent is the operation contract for the checker role.
type CheckerAgent interface {
	Check(ctx context.Context, intent, outcome map[string]any) (CheckOutcome, error)
}
