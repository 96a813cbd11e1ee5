package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/agentwire/agentwire/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelIntent_ParsesJSON(t *testing.T) {
	m := model.NewMockModel("test")
	m.SetFallback(`{"intent_type": "purchase", "confidence": 0.9}`)
	agent := NewModelIntent(m)

	intent, err := agent.Understand(context.Background(), map[string]any{"content": "buy a range hood"})

	require.NoError(t, err)
	assert.Equal(t, "purchase", intent["intent_type"])
}

func TestModelIntent_ExtractsJSONFromChattyReply(t *testing.T) {
	m := model.NewMockModel("test")
	m.SetFallback("Here you go: {\"intent_type\": \"browse\"} hope that helps")
	agent := NewModelIntent(m)

	intent, err := agent.Understand(context.Background(), map[string]any{"content": "just looking"})

	require.NoError(t, err)
	assert.Equal(t, "browse", intent["intent_type"])
}

func TestModelIntent_UnparseableReplyFallsBackToRaw(t *testing.T) {
	m := model.NewMockModel("test")
	m.SetFallback("no structure here")
	agent := NewModelIntent(m)

	intent, err := agent.Understand(context.Background(), map[string]any{"content": "hello"})

	require.NoError(t, err)
	assert.Equal(t, "unknown", intent["intent_type"])
	assert.Equal(t, "hello", intent["raw_content"])
}

func TestModelIntent_ModelErrorPropagates(t *testing.T) {
	m := model.NewMockModel("test")
	m.Fail(errors.New("provider down"))
	agent := NewModelIntent(m)

	_, err := agent.Understand(context.Background(), map[string]any{"content": "hello"})
	assert.Error(t, err)
}
