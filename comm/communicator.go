// Package comm gives one agent a synchronous-feeling request/response API on
// top of the asynchronous, queue-based broker. Each outstanding request is an
// independent pending slot keyed by correlation id and resolved exactly once,
// by whichever of "matching response arrives" or "timeout fires" wins.
package comm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentwire/agentwire/broker"
	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/logging"
	"github.com/google/uuid"
)

// DefaultRequestTimeout bounds SendRequest when the caller passes a
// non-positive timeout.
const DefaultRequestTimeout = 30 * time.Second

// Options configures a Communicator.
type Options struct {
	// Logger receives request lifecycle diagnostics. Defaults to NoOp.
	Logger logging.Logger
}

// Communicator is a per-agent façade over the broker. Constructing one
// registers the agent and installs the response handler that resolves
// pending requests. A single Communicator may have many requests
// outstanding concurrently; cancelling one never affects the others.
type Communicator struct {
	id     string
	broker *broker.Broker
	logger logging.Logger

	mu      sync.Mutex
	pending map[string]chan map[string]any
}

// New registers the agent id with the broker and returns its communicator.
func New(id string, b *broker.Broker, optFns ...func(o *Options)) *Communicator {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	c := &Communicator{
		id:      id,
		broker:  b,
		logger:  opts.Logger,
		pending: make(map[string]chan map[string]any),
	}
	b.Register(id)
	b.RegisterHandler(id, core.KindResponse, c.handleResponse)
	return c
}

// ID returns the agent id this communicator represents.
func (c *Communicator) ID() string { return c.id }

// SendRequest sends a request to the target role and blocks until a
// correlated response arrives, the timeout elapses, or ctx is cancelled.
// The request message carries the timeout as its TTL so it cannot be
// delivered after the caller has already given up. On timeout the pending
// slot is removed first, so a late response can never resolve the call.
func (c *Communicator) SendRequest(ctx context.Context, target string, payload map[string]any, timeout time.Duration) (map[string]any, error) {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	correlationID := uuid.NewString()
	msg := core.NewMessage(c.id, target, core.KindRequest, payload)
	msg.CorrelationID = correlationID
	msg.TTL = timeout

	ch := make(chan map[string]any, 1)
	c.mu.Lock()
	c.pending[correlationID] = ch
	c.mu.Unlock()
	defer c.removePending(correlationID)

	if !c.broker.Send(msg) {
		return nil, fmt.Errorf("request %s to %s refused by broker", msg.ID, target)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		return resp, nil
	case <-timer.C:
		c.logger.Warn("request timed out", "target", target, "correlation_id", correlationID, "timeout", timeout)
		return nil, fmt.Errorf("request to %s after %v: %w", target, timeout, core.ErrRequestTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SendResponse answers a previously received request, addressing the
// original sender and copying the correlation id. Returns whether the
// broker accepted the response.
func (c *Communicator) SendResponse(original core.Message, payload map[string]any) bool {
	msg := core.NewMessage(c.id, original.From, core.KindResponse, payload)
	msg.CorrelationID = original.CorrelationID
	return c.broker.Send(msg)
}

// SendNotification sends a fire-and-forget message; no correlation id, no
// waiting.
func (c *Communicator) SendNotification(target string, payload map[string]any) bool {
	return c.broker.Send(core.NewMessage(c.id, target, core.KindNotification, payload))
}

// Broadcast fans payload out to every subscriber of kind, using this
// agent's id as the sender. Returns the recipients reached.
func (c *Communicator) Broadcast(kind core.Kind, payload map[string]any) []string {
	return c.broker.Broadcast(c.id, kind, payload)
}

// Subscribe adds this agent to the broadcast fan-out list for kind.
func (c *Communicator) Subscribe(kind core.Kind) {
	c.broker.Subscribe(c.id, kind)
}

// RegisterHandler installs a handler for messages of the given kind
// addressed to this agent.
func (c *Communicator) RegisterHandler(kind core.Kind, fn broker.Handler) {
	c.broker.RegisterHandler(c.id, kind, fn)
}

// Drain pops up to limit queued messages for this agent in FIFO order.
// A limit <= 0 drains everything.
func (c *Communicator) Drain(limit int) []core.Message {
	return c.broker.Drain(c.id, limit)
}

// PendingRequests returns the number of requests still awaiting a response.
func (c *Communicator) PendingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Close unregisters the agent from the broker and drops all pending slots.
// In-flight SendRequest calls will run out their timeouts.
func (c *Communicator) Close() {
	c.broker.Unregister(c.id)
	c.mu.Lock()
	c.pending = make(map[string]chan map[string]any)
	c.mu.Unlock()
}

// handleResponse resolves the pending slot matching the response's
// correlation id. The slot is claimed (removed) under the lock before the
// payload is delivered, so each request resolves at most once and a
// response can never complete a request that already timed out.
func (c *Communicator) handleResponse(msg core.Message) error {
	if msg.CorrelationID == "" {
		return nil
	}
	c.mu.Lock()
	ch, ok := c.pending[msg.CorrelationID]
	if ok {
		delete(c.pending, msg.CorrelationID)
	}
	c.mu.Unlock()
	if !ok {
		c.logger.Debug("dropping uncorrelated response", "correlation_id", msg.CorrelationID, "from", msg.From)
		return nil
	}
	ch <- msg.Payload
	return nil
}

func (c *Communicator) removePending(correlationID string) {
	c.mu.Lock()
	delete(c.pending, correlationID)
	c.mu.Unlock()
}
