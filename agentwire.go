// Package agentwire provides a high-level façade over the message broker
// and the workflow orchestrator, enabling rapid construction of multi-agent
// request pipelines. Most applications interact with this package by:
//  1. Creating an AgentWire via New() (optionally overriding the defaults)
//  2. Registering one agent per role (intent, recommender, executor, checker)
//  3. Processing requests with Process and inspecting sessions afterwards
//
// The façade delegates pipeline execution to orchestrator.Orchestrator while
// keeping setup ergonomics concise. Agents that live in other processes of
// the same binary can talk through the shared Broker via comm.Communicator
// and agent.Remote. All defaults are safe for local development and testing.
package agentwire

import (
	"context"

	"github.com/agentwire/agentwire/broker"
	"github.com/agentwire/agentwire/comm"
	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/logging"
	"github.com/agentwire/agentwire/orchestrator"
)

// Options configures the AgentWire instance.
type Options struct {
	// Config holds loop and concurrency parameters for the orchestrator.
	Config orchestrator.Config

	// BrokerHistorySize bounds the shared broker's delivery history ring.
	BrokerHistorySize int

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// AgentWire is the high-level façade aggregating the shared broker and the
// workflow orchestrator.
type AgentWire struct {
	opts         Options
	broker       *broker.Broker
	orchestrator *orchestrator.Orchestrator
}

// New creates a new AgentWire instance with optional overrides.
func New(optFns ...func(o *Options)) *AgentWire {
	opts := Options{
		Config:            orchestrator.DefaultConfig,
		BrokerHistorySize: broker.DefaultHistorySize,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	b := broker.New(func(o *broker.Options) {
		o.HistorySize = opts.BrokerHistorySize
		o.Logger = opts.Logger
	})
	orch := orchestrator.New(func(o *orchestrator.Options) {
		o.Config = opts.Config
		o.Logger = opts.Logger
	})

	return &AgentWire{opts: opts, broker: b, orchestrator: orch}
}

// RegisterAgent binds an instance to a role on the orchestrator.
func (w *AgentWire) RegisterAgent(role core.Role, instance any) error {
	return w.orchestrator.RegisterAgent(role, instance)
}

// Process runs one user request through the workflow pipeline.
func (w *AgentWire) Process(ctx context.Context, request map[string]any) *orchestrator.Result {
	return w.orchestrator.Process(ctx, request)
}

// GetSessionStatus returns an immutable snapshot of a session's state.
func (w *AgentWire) GetSessionStatus(sessionID string) (core.SessionStatus, bool) {
	return w.orchestrator.GetSessionStatus(sessionID)
}

// Broker exposes the shared message broker so decoupled agents can attach
// communicators to it.
func (w *AgentWire) Broker() *broker.Broker { return w.broker }

// Communicator registers id on the shared broker and returns its
// request/response façade.
func (w *AgentWire) Communicator(id string) *comm.Communicator {
	return comm.New(id, w.broker, func(o *comm.Options) {
		o.Logger = w.opts.Logger
	})
}
