// Package orchestrator drives one user request from intake to a compiled
// final result. It holds the role registry (one live instance per role),
// creates a workflow session per request, runs the fixed pipeline
// (intent -> recommender -> bounded execute/check loop -> compile) and owns
// every session record; agents only ever return values to it.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/logging"
	"github.com/google/uuid"
)

// Options configures an Orchestrator.
type Options struct {
	// Config holds loop and concurrency parameters. Defaults to
	// DefaultConfig.
	Config Config
	// Logger receives pipeline diagnostics. Defaults to NoOp.
	Logger logging.Logger
}

// Result is what Process hands back for every session, success or not.
// Failures are reported structurally rather than as a returned error so
// that partial per-role results stay inspectable.
type Result struct {
	SessionID string            `json:"session_id"`
	Success   bool              `json:"success"`
	Output    map[string]any    `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	Partial   map[core.Role]any `json:"partial_results,omitempty"`
	Summary   Summary           `json:"execution_summary"`
}

// Orchestrator coordinates the agent roles for concurrent, independent
// sessions. Steps within one session are strictly ordered; sessions share
// no mutable state beyond the registries guarded here.
type Orchestrator struct {
	cfg    Config
	logger *logging.WorkflowLogger
	sem    chan struct{}

	mu     sync.RWMutex
	agents map[core.Role]any

	sessionsMu sync.RWMutex
	sessions   map[string]*core.WorkflowSession
}

// New constructs an orchestrator with no roles registered.
func New(optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	o := &Orchestrator{
		cfg:      opts.Config,
		logger:   logging.NewWorkflowLogger(opts.Logger),
		agents:   make(map[core.Role]any),
		sessions: make(map[string]*core.WorkflowSession),
	}
	if opts.Config.MaxConcurrentSessions > 0 {
		o.sem = make(chan struct{}, opts.Config.MaxConcurrentSessions)
	}
	return o
}

// RegisterAgent binds an instance to a role, replacing any prior instance.
// The instance must satisfy the role's operation contract from core.
func (o *Orchestrator) RegisterAgent(role core.Role, instance any) error {
	var ok bool
	switch role {
	case core.RoleIntent:
		_, ok = instance.(core.IntentAgent)
	case core.RoleRecommender:
		_, ok = instance.(core.RecommenderAgent)
	case core.RoleExecutor:
		_, ok = instance.(core.ExecutorAgent)
	case core.RoleChecker:
		_, ok = instance.(core.CheckerAgent)
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	if !ok {
		return fmt.Errorf("instance does not satisfy the %q role contract", role)
	}

	o.mu.Lock()
	o.agents[role] = instance
	o.mu.Unlock()
	o.logger.Info("agent registered", "role", role)
	return nil
}

// UnregisterAgent removes the instance bound to a role, if any.
func (o *Orchestrator) UnregisterAgent(role core.Role) {
	o.mu.Lock()
	delete(o.agents, role)
	o.mu.Unlock()
}

// GetSessionStatus returns an immutable snapshot of a session's state:
// status, per-role results and iteration history.
func (o *Orchestrator) GetSessionStatus(sessionID string) (core.SessionStatus, bool) {
	o.sessionsMu.RLock()
	sess, ok := o.sessions[sessionID]
	o.sessionsMu.RUnlock()
	if !ok {
		return core.SessionStatus{}, false
	}
	return sess.Snapshot(), true
}

// Process runs one user request through the pipeline and always returns a
// Result. Step failures mark the session FAILED and surface the partial
// per-role results gathered so far; context cancellation marks it TIMEOUT.
func (o *Orchestrator) Process(ctx context.Context, request map[string]any) *Result {
	sess := core.NewWorkflowSession(uuid.NewString(), request)
	o.sessionsMu.Lock()
	o.sessions[sess.ID()] = sess
	o.sessionsMu.Unlock()

	log := o.logger.WithSession(sess.ID())

	if o.sem != nil {
		select {
		case o.sem <- struct{}{}:
			defer func() { <-o.sem }()
		case <-ctx.Done():
			sess.Abort(ctx.Err())
			log.Warn("session aborted before start", "error", ctx.Err())
			return o.failureResult(sess)
		}
	}

	sess.Begin()
	log.Info("session started")

	final, err := o.runPipeline(ctx, sess)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			sess.Abort(err)
		} else {
			sess.Fail(err)
		}
		log.Error("session failed", "status", sess.Status(), "error", err)
		return o.failureResult(sess)
	}

	sess.Complete(final)
	log.Info("session completed", "iterations", len(sess.Iterations()), "elapsed", sess.Elapsed())
	return &Result{
		SessionID: sess.ID(),
		Success:   true,
		Output:    final,
		Summary:   o.summarize(sess),
	}
}

// runPipeline executes the fixed step order. Any step error is returned to
// Process, which converts it into the session's terminal state; results
// recorded before the error remain on the session.
func (o *Orchestrator) runPipeline(ctx context.Context, sess *core.WorkflowSession) (map[string]any, error) {
	log := o.logger.WithSession(sess.ID())

	// Step 1: intake understanding.
	var intent map[string]any
	if agent, ok := o.intentAgent(); ok {
		sess.AdvanceStep()
		out, err := agent.Understand(ctx, sess.Request())
		if err != nil {
			return nil, fmt.Errorf("intent step: %w", err)
		}
		intent = out
		sess.SetResult(core.RoleIntent, out)
	} else {
		sess.RecordSkip(core.RoleIntent)
		log.Warn("intent role unregistered, step skipped")
	}

	// Step 2: candidate generation.
	var candidates map[string]any
	if agent, ok := o.recommenderAgent(); ok {
		sess.AdvanceStep()
		out, err := agent.Recommend(ctx, intent)
		if err != nil {
			return nil, fmt.Errorf("recommend step: %w", err)
		}
		candidates = out
		sess.SetResult(core.RoleRecommender, out)
	} else {
		sess.RecordSkip(core.RoleRecommender)
		log.Warn("recommender role unregistered, step skipped")
	}

	// Step 3: bounded execute/check loop.
	lastExec, lastCheck, err := o.runLoop(ctx, sess, intent, candidates)
	if err != nil {
		return nil, err
	}

	// Step 4: compile.
	sess.AdvanceStep()
	return o.compileResult(sess, intent, candidates, lastExec, lastCheck), nil
}

// runLoop drives the execute/check feedback cycle: each round's check
// suggestions become the next round's executor guidance. The loop stops at
// the first score clearing the threshold or when the iteration budget is
// spent.
func (o *Orchestrator) runLoop(
	ctx context.Context,
	sess *core.WorkflowSession,
	intent, candidates map[string]any,
) (map[string]any, *core.CheckOutcome, error) {
	log := o.logger.WithSession(sess.ID())

	executor, haveExecutor := o.executorAgent()
	if !haveExecutor {
		sess.RecordSkip(core.RoleExecutor)
		log.Warn("executor role unregistered, loop skipped")
		return nil, nil, nil
	}
	checker, haveChecker := o.checkerAgent()

	var lastExec map[string]any
	var lastCheck *core.CheckOutcome
	var guidance []string

	for iter := 1; iter <= o.cfg.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		sess.AdvanceStep()
		execOut, err := executor.Execute(ctx, core.ExecutionInput{
			Intent:     intent,
			Candidates: candidates,
			Iteration:  iter,
			Guidance:   guidance,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("execute step, iteration %d: %w", iter, err)
		}
		lastExec = execOut
		sess.SetResult(core.RoleExecutor, execOut)

		record := core.Iteration{Round: iter, Execution: execOut}

		if !haveChecker {
			sess.RecordIteration(record)
			sess.RecordSkip(core.RoleChecker)
			log.Warn("checker role unregistered, loop exits after one round")
			return lastExec, nil, nil
		}

		outcome, err := checker.Check(ctx, intent, execOut)
		if err != nil {
			sess.RecordIteration(record)
			return nil, nil, fmt.Errorf("check step, iteration %d: %w", iter, err)
		}
		outcome = outcome.Normalize()
		record.Check = &outcome
		sess.RecordIteration(record)
		sess.SetResult(core.RoleChecker, outcome)
		lastCheck = &outcome

		log.Info("iteration checked", "round", iter, "level", outcome.Level, "score", outcome.Score)

		if outcome.Score >= o.cfg.SatisfactionThreshold {
			log.Info("satisfaction threshold cleared, exiting loop early", "round", iter, "score", outcome.Score)
			break
		}
		guidance = outcome.Suggestions
	}
	return lastExec, lastCheck, nil
}

// compileResult merges intake, recommendation and the final round's
// execute/check outcomes into one output record.
func (o *Orchestrator) compileResult(
	sess *core.WorkflowSession,
	intent, candidates, lastExec map[string]any,
	lastCheck *core.CheckOutcome,
) map[string]any {
	iterations := sess.Iterations()

	satisfaction := map[string]any{
		"level": core.LevelUndetermined,
		"score": 0.0,
	}
	if lastCheck != nil {
		satisfaction = map[string]any{
			"level":                   lastCheck.Level,
			"score":                   lastCheck.Score,
			"missing_requirements":    lastCheck.Missing,
			"improvement_suggestions": lastCheck.Suggestions,
			"next_action_needed":      lastCheck.NeedsAction,
		}
	}

	return map[string]any{
		"recommendation": candidates,
		"intent":         intent,
		"execution": map[string]any{
			"outcome":      lastExec,
			"satisfaction": satisfaction,
			"history":      iterations,
		},
		"process": map[string]any{
			"total_iterations":   len(iterations),
			"workflow_completed": true,
		},
	}
}

func (o *Orchestrator) failureResult(sess *core.WorkflowSession) *Result {
	snap := sess.Snapshot()
	res := &Result{
		SessionID: sess.ID(),
		Success:   false,
		Partial:   snap.Results,
		Summary:   o.summarize(sess),
	}
	if sess.Failure() != nil {
		res.Error = sess.Failure().Error()
	}
	return res
}

func (o *Orchestrator) summarize(sess *core.WorkflowSession) Summary {
	return Summary{
		SessionID:  sess.ID(),
		Status:     string(sess.Status()),
		Iterations: len(sess.Iterations()),
		Elapsed:    sess.Elapsed(),
	}
}

func (o *Orchestrator) intentAgent() (core.IntentAgent, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	a, ok := o.agents[core.RoleIntent].(core.IntentAgent)
	return a, ok
}

func (o *Orchestrator) recommenderAgent() (core.RecommenderAgent, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	a, ok := o.agents[core.RoleRecommender].(core.RecommenderAgent)
	return a, ok
}

func (o *Orchestrator) executorAgent() (core.ExecutorAgent, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	a, ok := o.agents[core.RoleExecutor].(core.ExecutorAgent)
	return a, ok
}

func (o *Orchestrator) checkerAgent() (core.CheckerAgent, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	a, ok := o.agents[core.RoleChecker].(core.CheckerAgent)
	return a, ok
}
