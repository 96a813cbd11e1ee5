package core

import (
	"errors"
	"testing"
)

func TestWorkflowSession_MonotoneStatus(t *testing.T) {
	s := NewWorkflowSession("s1", map[string]any{"content": "hi"})
	if s.Status() != StatusPending {
		t.Fatalf("new session should be pending, got %q", s.Status())
	}

	s.Begin()
	if s.Status() != StatusInProgress {
		t.Fatalf("expected in_progress, got %q", s.Status())
	}

	s.Complete(map[string]any{"ok": true})
	if s.Status() != StatusCompleted {
		t.Fatalf("expected completed, got %q", s.Status())
	}

	// Terminal states never regress.
	s.Fail(errors.New("late failure"))
	if s.Status() != StatusCompleted {
		t.Errorf("completed session must not move to failed, got %q", s.Status())
	}
	if s.Failure() != nil {
		t.Error("failure must not attach after completion")
	}
}

func TestWorkflowSession_FailRetainsPartialResults(t *testing.T) {
	s := NewWorkflowSession("s2", nil)
	s.Begin()
	s.SetResult(RoleIntent, map[string]any{"intent_type": "purchase"})

	stepErr := errors.New("recommender exploded")
	s.Fail(stepErr)

	if s.Status() != StatusFailed {
		t.Fatalf("expected failed, got %q", s.Status())
	}
	if _, ok := s.Result(RoleIntent); !ok {
		t.Error("partial result should survive failure")
	}
	snap := s.Snapshot()
	if snap.Error != stepErr.Error() {
		t.Errorf("snapshot error = %q, want %q", snap.Error, stepErr)
	}
}

func TestWorkflowSession_SnapshotIsDetached(t *testing.T) {
	s := NewWorkflowSession("s3", nil)
	s.SetResult(RoleExecutor, "first")
	s.RecordIteration(Iteration{Round: 1})

	snap := s.Snapshot()
	snap.Results[RoleExecutor] = "mutated"
	snap.Iterations[0].Round = 99

	if v, _ := s.Result(RoleExecutor); v != "first" {
		t.Error("mutating a snapshot must not affect the session")
	}
	if s.Iterations()[0].Round != 1 {
		t.Error("mutating snapshot iterations must not affect the session")
	}
}

func TestWorkflowSession_StepCounter(t *testing.T) {
	s := NewWorkflowSession("s4", nil)
	if got := s.AdvanceStep(); got != 1 {
		t.Errorf("first step = %d, want 1", got)
	}
	if got := s.AdvanceStep(); got != 2 {
		t.Errorf("second step = %d, want 2", got)
	}
}
