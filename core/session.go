package core

import (
	"sync"
	"time"
)

// Status is a workflow session's lifecycle state. Transitions are monotone:
// PENDING -> IN_PROGRESS -> one of COMPLETED, FAILED or TIMEOUT. A session
// never re-enters an earlier state.
type Status string

const (
	// StatusPending is the state of a freshly created session.
	StatusPending Status = "pending"
	// StatusInProgress is entered the instant processing starts.
	StatusInProgress Status = "in_progress"
	// StatusCompleted means the full pipeline finished without error.
	StatusCompleted Status = "completed"
	// StatusFailed means a pipeline step errored; partial results remain.
	StatusFailed Status = "failed"
	// StatusTimeout means an external deadline aborted the session.
	StatusTimeout Status = "timeout"
)

var statusRank = map[Status]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusCompleted:  2,
	StatusFailed:     2,
	StatusTimeout:    2,
}

// Iteration records one round of the execute/check loop.
type Iteration struct {
	Round     int            `json:"round"`
	Execution map[string]any `json:"execution"`
	Check     *CheckOutcome  `json:"check,omitempty"`
}

// WorkflowSession is the per-request state record. It is owned exclusively
// by the orchestrator; agents never mutate it directly. It is safe for
// concurrent access so status queries may run while the pipeline is in
// flight.
type WorkflowSession struct {
	mu          sync.RWMutex
	id          string
	request     map[string]any
	step        int
	status      Status
	results     map[Role]any
	skipped     []Role
	iterations  []Iteration
	finalResult map[string]any
	failure     error
	createdAt   time.Time
	completedAt time.Time
}

// NewWorkflowSession creates a pending session for one user request.
func NewWorkflowSession(id string, request map[string]any) *WorkflowSession {
	return &WorkflowSession{
		id:        id,
		request:   request,
		status:    StatusPending,
		results:   make(map[Role]any),
		createdAt: time.Now(),
	}
}

// ID returns the opaque session identifier.
func (s *WorkflowSession) ID() string { return s.id }

// Request returns the original user request payload.
func (s *WorkflowSession) Request() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.request
}

// Status returns the current lifecycle state.
func (s *WorkflowSession) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// transitionLocked applies a monotone status change; backwards moves and
// re-entry into terminal states are ignored.
func (s *WorkflowSession) transitionLocked(to Status) bool {
	if statusRank[to] <= statusRank[s.status] {
		return false
	}
	s.status = to
	if statusRank[to] == 2 {
		s.completedAt = time.Now()
	}
	return true
}

// Begin moves the session to IN_PROGRESS.
func (s *WorkflowSession) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitionLocked(StatusInProgress)
}

// Complete records the compiled final result and moves to COMPLETED.
func (s *WorkflowSession) Complete(final map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transitionLocked(StatusCompleted) {
		s.finalResult = final
	}
}

// Fail attaches the triggering error and moves to FAILED. Results recorded
// before the failure are retained.
func (s *WorkflowSession) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transitionLocked(StatusFailed) {
		s.failure = err
	}
}

// Abort attaches the triggering error and moves to TIMEOUT. Used when an
// external deadline cuts the pipeline short.
func (s *WorkflowSession) Abort(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transitionLocked(StatusTimeout) {
		s.failure = err
	}
}

// AdvanceStep increments and returns the session's step counter.
func (s *WorkflowSession) AdvanceStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step++
	return s.step
}

// SetResult stores a role's latest result.
func (s *WorkflowSession) SetResult(role Role, result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[role] = result
}

// Result returns a role's latest recorded result.
func (s *WorkflowSession) Result(role Role) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.results[role]
	return v, ok
}

// RecordSkip notes that a pipeline step was skipped because its role was
// unregistered.
func (s *WorkflowSession) RecordSkip(role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped = append(s.skipped, role)
}

// RecordIteration appends one execute/check round to the history.
func (s *WorkflowSession) RecordIteration(it Iteration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.iterations = append(s.iterations, it)
}

// Iterations returns a defensive copy of the iteration history.
func (s *WorkflowSession) Iterations() []Iteration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Iteration, len(s.iterations))
	copy(out, s.iterations)
	return out
}

// Failure returns the error that failed or aborted the session, if any.
func (s *WorkflowSession) Failure() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure
}

// SessionStatus is an immutable snapshot of a session for observability.
type SessionStatus struct {
	SessionID   string         `json:"session_id"`
	Status      Status         `json:"status"`
	Step        int            `json:"step"`
	Results     map[Role]any   `json:"results"`
	Skipped     []Role         `json:"skipped,omitempty"`
	Iterations  []Iteration    `json:"iterations"`
	FinalResult map[string]any `json:"final_result,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt time.Time      `json:"completed_at,omitzero"`
}

// Snapshot returns a copy of the session's observable state. Maps and
// slices are copied so callers cannot mutate the live record.
func (s *WorkflowSession) Snapshot() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := SessionStatus{
		SessionID:   s.id,
		Status:      s.status,
		Step:        s.step,
		Results:     make(map[Role]any, len(s.results)),
		Skipped:     append([]Role(nil), s.skipped...),
		Iterations:  append([]Iteration(nil), s.iterations...),
		FinalResult: s.finalResult,
		CreatedAt:   s.createdAt,
		CompletedAt: s.completedAt,
	}
	for k, v := range s.results {
		snap.Results[k] = v
	}
	if s.failure != nil {
		snap.Error = s.failure.Error()
	}
	return snap
}

// Elapsed returns the session's wall-clock duration: completion time minus
// creation time, or time since creation while still running.
func (s *WorkflowSession) Elapsed() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.completedAt.IsZero() {
		return s.completedAt.Sub(s.createdAt)
	}
	return time.Since(s.createdAt)
}
