package core

// SatisfactionLevel grades how well an execution outcome met the original
// request, as judged by the checker role.
type SatisfactionLevel string

const (
	// LevelFullySatisfied means no further action is needed (score >= 0.8).
	LevelFullySatisfied SatisfactionLevel = "fully_satisfied"
	// LevelPartiallySatisfied means the outcome needs adjustment
	// (score in [0.5, 0.8)).
	LevelPartiallySatisfied SatisfactionLevel = "partially_satisfied"
	// LevelNotSatisfied means the core need was missed (score < 0.5).
	LevelNotSatisfied SatisfactionLevel = "not_satisfied"
	// LevelUndetermined means the checker could not judge; producers that
	// cannot score an outcome return this with a zero score.
	LevelUndetermined SatisfactionLevel = "undetermined"
)

// Valid reports whether l is a member of the closed level set.
func (l SatisfactionLevel) Valid() bool {
	switch l {
	case LevelFullySatisfied, LevelPartiallySatisfied, LevelNotSatisfied, LevelUndetermined:
		return true
	}
	return false
}

// FullySatisfiedThreshold is the score at or above which an outcome is
// considered fully satisfied and the retry loop exits early.
const FullySatisfiedThreshold = 0.8

// partialThreshold separates partially satisfied from not satisfied.
const partialThreshold = 0.5

// LevelForScore maps a clamped score onto its documented satisfaction band.
func LevelForScore(score float64) SatisfactionLevel {
	switch {
	case score >= FullySatisfiedThreshold:
		return LevelFullySatisfied
	case score >= partialThreshold:
		return LevelPartiallySatisfied
	default:
		return LevelNotSatisfied
	}
}

// CheckOutcome is the checker role's verdict on one execution outcome.
// Score and Confidence live in [0,1]; Level must agree with Score per the
// documented bands. Use Normalize to reconcile outcomes from producers that
// cannot guarantee this themselves.
type CheckOutcome struct {
	Level       SatisfactionLevel `json:"satisfaction_level"`
	Score       float64           `json:"satisfaction_score"`
	Missing     []string          `json:"missing_requirements,omitempty"`
	Suggestions []string          `json:"improvement_suggestions,omitempty"`
	NeedsAction bool              `json:"next_action_needed"`
	Confidence  float64           `json:"confidence"`
}

// UndeterminedOutcome is the canonical fallback for checkers that cannot
// produce a judgement: undetermined level, zero score, action still needed.
func UndeterminedOutcome() CheckOutcome {
	return CheckOutcome{
		Level:       LevelUndetermined,
		Score:       0,
		NeedsAction: true,
	}
}

// Normalize returns a copy of the outcome with Score and Confidence clamped
// to [0,1] and Level reconciled with Score. An undetermined level is kept as
// is; any other level that disagrees with the score's band is replaced by
// the band-derived level so the invariant holds regardless of producer.
func (c CheckOutcome) Normalize() CheckOutcome {
	c.Score = clamp01(c.Score)
	c.Confidence = clamp01(c.Confidence)
	if c.Level != LevelUndetermined {
		c.Level = LevelForScore(c.Score)
	}
	return c
}

// Satisfied reports whether the score clears the early-exit threshold.
func (c CheckOutcome) Satisfied() bool {
	return c.Score >= FullySatisfiedThreshold
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
