package core

import "testing"

func TestLevelForScore_Bands(t *testing.T) {
	tests := []struct {
		score float64
		want  SatisfactionLevel
	}{
		{1.0, LevelFullySatisfied},
		{0.8, LevelFullySatisfied},
		{0.79, LevelPartiallySatisfied},
		{0.5, LevelPartiallySatisfied},
		{0.49, LevelNotSatisfied},
		{0, LevelNotSatisfied},
	}
	for _, tt := range tests {
		if got := LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestCheckOutcome_Normalize(t *testing.T) {
	// Out-of-range values are clamped and the level re-derived.
	c := CheckOutcome{Level: LevelNotSatisfied, Score: 1.7, Confidence: -0.2}
	n := c.Normalize()
	if n.Score != 1 || n.Confidence != 0 {
		t.Errorf("expected clamped score/confidence, got %v/%v", n.Score, n.Confidence)
	}
	if n.Level != LevelFullySatisfied {
		t.Errorf("expected level derived from score, got %q", n.Level)
	}

	// Undetermined is preserved rather than mapped onto a band.
	u := CheckOutcome{Level: LevelUndetermined, Score: 0.9}.Normalize()
	if u.Level != LevelUndetermined {
		t.Errorf("undetermined level should survive normalization, got %q", u.Level)
	}
}

func TestUndeterminedOutcome(t *testing.T) {
	u := UndeterminedOutcome()
	if u.Level != LevelUndetermined || u.Score != 0 || !u.NeedsAction {
		t.Errorf("unexpected fallback outcome: %+v", u)
	}
	if u.Satisfied() {
		t.Error("fallback outcome must not satisfy the early-exit threshold")
	}
}

func TestCheckOutcome_Satisfied(t *testing.T) {
	if (CheckOutcome{Score: 0.79}).Satisfied() {
		t.Error("0.79 should not clear the threshold")
	}
	if !(CheckOutcome{Score: 0.8}).Satisfied() {
		t.Error("0.8 should clear the threshold")
	}
}
