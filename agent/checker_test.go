package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelChecker_ParsesCleanJSON(t *testing.T) {
	m := model.NewMockModel("test")
	m.SetFallback(`{
		"satisfaction_level": "partially_satisfied",
		"satisfaction_score": 0.6,
		"missing_requirements": ["price range"],
		"improvement_suggestions": ["ask for a budget"],
		"next_action_needed": true,
		"confidence": 0.9
	}`)
	checker := NewModelChecker(m)

	outcome, err := checker.Check(context.Background(), map[string]any{"intent_type": "purchase"}, map[string]any{"done": true})

	require.NoError(t, err)
	assert.Equal(t, core.LevelPartiallySatisfied, outcome.Level)
	assert.Equal(t, 0.6, outcome.Score)
	assert.Equal(t, []string{"price range"}, outcome.Missing)
	assert.Equal(t, []string{"ask for a budget"}, outcome.Suggestions)
	assert.True(t, outcome.NeedsAction)
}

func TestModelChecker_ExtractsJSONFromChattyReply(t *testing.T) {
	m := model.NewMockModel("test")
	m.SetFallback("Sure, here is my verdict:\n" +
		`{"satisfaction_level": "fully_satisfied", "satisfaction_score": 0.95, "next_action_needed": false, "confidence": 0.8}` +
		"\nLet me know if you need more detail.")
	checker := NewModelChecker(m)

	outcome, err := checker.Check(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, core.LevelFullySatisfied, outcome.Level)
	assert.Equal(t, 0.95, outcome.Score)
}

func TestModelChecker_UnparseableReplyDegrades(t *testing.T) {
	m := model.NewMockModel("test")
	m.SetFallback("I could not evaluate that.")
	checker := NewModelChecker(m)

	outcome, err := checker.Check(context.Background(), nil, nil)

	require.NoError(t, err, "parse failure must degrade, not fail the loop")
	assert.Equal(t, core.LevelUndetermined, outcome.Level)
	assert.Zero(t, outcome.Score)
	assert.True(t, outcome.NeedsAction)
}

func TestModelChecker_ModelErrorDegrades(t *testing.T) {
	m := model.NewMockModel("test")
	m.Fail(errors.New("provider down"))
	checker := NewModelChecker(m)

	outcome, err := checker.Check(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, core.LevelUndetermined, outcome.Level)
	assert.NotEmpty(t, outcome.Missing)
}

func TestModelChecker_UnknownLevelDerivedFromScore(t *testing.T) {
	m := model.NewMockModel("test")
	m.SetFallback(`{"satisfaction_level": "cannot_determine", "satisfaction_score": 0.85, "confidence": 0.7}`)
	checker := NewModelChecker(m)

	outcome, err := checker.Check(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, core.LevelFullySatisfied, outcome.Level, "unknown level strings fall back to the score band")
}
