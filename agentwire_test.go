package agentwire

import (
	"context"
	"testing"
	"time"

	"github.com/agentwire/agentwire/agent"
	"github.com/agentwire/agentwire/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEnd_CoLocatedPipeline(t *testing.T) {
	aw := New()

	require.NoError(t, aw.RegisterAgent(core.RoleIntent, agent.IntentFunc(
		func(_ context.Context, request map[string]any) (map[string]any, error) {
			return map[string]any{"intent_type": "purchase", "content": request["content"]}, nil
		})))
	require.NoError(t, aw.RegisterAgent(core.RoleRecommender, agent.RecommenderFunc(
		func(_ context.Context, intent map[string]any) (map[string]any, error) {
			return map[string]any{"top": "model-x"}, nil
		})))
	require.NoError(t, aw.RegisterAgent(core.RoleExecutor, agent.ExecutorFunc(
		func(_ context.Context, in core.ExecutionInput) (map[string]any, error) {
			return map[string]any{"iteration": in.Iteration}, nil
		})))
	require.NoError(t, aw.RegisterAgent(core.RoleChecker, agent.CheckerFunc(
		func(_ context.Context, _, _ map[string]any) (core.CheckOutcome, error) {
			return core.CheckOutcome{Level: core.LevelFullySatisfied, Score: 0.9, Confidence: 0.8}, nil
		})))

	res := aw.Process(context.Background(), map[string]any{"content": "need a quiet range hood"})

	require.True(t, res.Success, "unexpected failure: %s", res.Error)
	status, ok := aw.GetSessionStatus(res.SessionID)
	require.True(t, ok)
	assert.Equal(t, core.StatusCompleted, status.Status)
	require.Len(t, status.Iterations, 1)
}

func TestEndToEnd_BrokerBackedRoles(t *testing.T) {
	aw := New()

	// The executor and checker live behind the shared broker.
	worker := aw.Communicator("worker")
	agent.Serve(worker, func(o *agent.ServeOptions) {
		o.Executor = agent.ExecutorFunc(func(_ context.Context, in core.ExecutionInput) (map[string]any, error) {
			return map[string]any{"iteration": in.Iteration}, nil
		})
		o.Checker = agent.CheckerFunc(func(_ context.Context, _, _ map[string]any) (core.CheckOutcome, error) {
			return core.CheckOutcome{Level: core.LevelFullySatisfied, Score: 0.95, Confidence: 0.9}, nil
		})
	})

	remote := agent.NewRemote(aw.Communicator("pipeline"), "worker", func(o *agent.RemoteOptions) {
		o.Timeout = time.Second
	})
	require.NoError(t, aw.RegisterAgent(core.RoleExecutor, remote))
	require.NoError(t, aw.RegisterAgent(core.RoleChecker, remote))

	res := aw.Process(context.Background(), map[string]any{"content": "hi"})

	require.True(t, res.Success, "unexpected failure: %s", res.Error)
	status, _ := aw.GetSessionStatus(res.SessionID)
	require.Len(t, status.Iterations, 1)
	require.NotNil(t, status.Iterations[0].Check)
	assert.Equal(t, core.LevelFullySatisfied, status.Iterations[0].Check.Level)
}
