package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentwire/agentwire/logging"
	"github.com/agentwire/agentwire/model"
)

const intentInstructions = `You are an intent understanding agent.
Given a raw user request, extract the structured intent. Reply with a
single JSON object and nothing else:
{
  "intent_type": "...",
  "entities": {"...": "..."},
  "constraints": ["..."],
  "confidence": 0.9
}`

// IntentOptions configures a ModelIntent.
type IntentOptions struct {
	Logger logging.Logger
}

// ModelIntent extracts structured intent from raw requests by prompting a
// text model. An unparseable reply degrades to an "unknown" intent record
// carrying the raw content instead of failing the pipeline.
type ModelIntent struct {
	model  model.Model
	logger logging.Logger
}

// NewModelIntent constructs an intent agent backed by the given model.
func NewModelIntent(m model.Model, optFns ...func(o *IntentOptions)) *ModelIntent {
	opts := IntentOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelIntent{model: m, logger: opts.Logger}
}

// Understand implements core.IntentAgent.
func (a *ModelIntent) Understand(ctx context.Context, request map[string]any) (map[string]any, error) {
	content := requestContent(request)

	resp, err := a.model.Complete(ctx, model.Request{
		Instructions: intentInstructions,
		Input:        content,
	})
	if err != nil {
		return nil, fmt.Errorf("intent model call: %w", err)
	}

	if intent, ok := parseIntent(resp.Text); ok {
		return intent, nil
	}
	a.logger.Warn("unparseable intent reply, falling back to raw record")
	return map[string]any{
		"intent_type": "unknown",
		"raw_content": content,
	}, nil
}

// requestContent pulls the user text out of a request record, falling back
// to the whole record rendered as JSON.
func requestContent(request map[string]any) string {
	if s, ok := request["content"].(string); ok && s != "" {
		return s
	}
	data, _ := json.Marshal(request)
	return string(data)
}

func parseIntent(text string) (map[string]any, bool) {
	var intent map[string]any
	if err := json.Unmarshal([]byte(text), &intent); err == nil {
		return intent, true
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &intent); err == nil {
			return intent, true
		}
	}
	return nil, false
}
