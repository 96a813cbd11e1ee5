package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/logging"
	"github.com/agentwire/agentwire/model"
)

const checkerInstructions = `You are a requirement satisfaction checker.
Given a user intent and an execution outcome, judge how well the outcome
satisfies the intent. Reply with a single JSON object and nothing else:
{
  "satisfaction_level": "fully_satisfied|partially_satisfied|not_satisfied|undetermined",
  "satisfaction_score": 0.75,
  "missing_requirements": ["..."],
  "improvement_suggestions": ["..."],
  "next_action_needed": true,
  "confidence": 0.9
}`

// CheckerOptions configures a ModelChecker.
type CheckerOptions struct {
	// Logger receives parse diagnostics. Defaults to NoOp.
	Logger logging.Logger
}

// ModelChecker judges execution outcomes by prompting a text model and
// parsing its JSON verdict. A reply that cannot be parsed degrades to the
// undetermined outcome with a zero score rather than failing the loop.
type ModelChecker struct {
	model  model.Model
	logger logging.Logger
}

// NewModelChecker constructs a checker backed by the given model.
func NewModelChecker(m model.Model, optFns ...func(o *CheckerOptions)) *ModelChecker {
	opts := CheckerOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelChecker{model: m, logger: opts.Logger}
}

// Check implements core.CheckerAgent.
func (c *ModelChecker) Check(ctx context.Context, intent, outcome map[string]any) (core.CheckOutcome, error) {
	resp, err := c.model.Complete(ctx, model.Request{
		Instructions: checkerInstructions,
		Input:        buildCheckPrompt(intent, outcome),
	})
	if err != nil {
		c.logger.Warn("check model call failed, degrading to undetermined", "error", err)
		fallback := core.UndeterminedOutcome()
		fallback.Missing = []string{fmt.Sprintf("check failed: %v", err)}
		fallback.Suggestions = []string{"retry the check"}
		return fallback, nil
	}
	return c.parseOutcome(resp.Text), nil
}

func buildCheckPrompt(intent, outcome map[string]any) string {
	intentJSON, _ := json.MarshalIndent(intent, "", "  ")
	outcomeJSON, _ := json.MarshalIndent(outcome, "", "  ")
	return fmt.Sprintf("User intent:\n%s\n\nExecution outcome:\n%s\n", intentJSON, outcomeJSON)
}

// parseOutcome reads the model's verdict: first as a whole-reply JSON
// object, then from the outermost braces of a chatty reply, and finally
// as the undetermined fallback.
func (c *ModelChecker) parseOutcome(text string) core.CheckOutcome {
	var outcome core.CheckOutcome
	if err := json.Unmarshal([]byte(text), &outcome); err == nil {
		return finishParse(outcome)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &outcome); err == nil {
			return finishParse(outcome)
		}
	}

	c.logger.Warn("unparseable check reply, degrading to undetermined", "reply_len", len(text))
	fallback := core.UndeterminedOutcome()
	fallback.Missing = []string{"unparseable check reply"}
	fallback.Suggestions = []string{"retry the check"}
	return fallback
}

func finishParse(outcome core.CheckOutcome) core.CheckOutcome {
	if !outcome.Level.Valid() {
		outcome.Level = core.LevelForScore(outcome.Score)
	}
	return outcome.Normalize()
}
