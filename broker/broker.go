// Package broker implements the in-memory message router between agent
// roles. Delivery is best-effort, at-most-once and point-to-point (plus
// topic broadcast by message kind): a message is validated, checked against
// its TTL and its recipient's registration, enqueued FIFO, recorded in a
// bounded history ring and synchronously dispatched to every handler
// registered for the (recipient, kind) pair. There is no acknowledgement
// and no automatic redelivery.
package broker

import (
	"fmt"
	"sync"
	"time"

	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/logging"
)

// DefaultHistorySize bounds the recent-message ring buffer.
const DefaultHistorySize = 1000

// Handler consumes a message dispatched by the broker. A non-nil error (or
// a panic) is contained per-handler: it is counted and logged, and neither
// aborts delivery to other handlers nor propagates to the sender.
type Handler func(core.Message) error

type handlerEntry struct {
	kind core.Kind
	fn   Handler
}

// Stats summarizes broker activity for introspection and tests.
type Stats struct {
	ActiveRoles     []string               `json:"active_roles"`
	QueuedMessages  int                    `json:"queued_messages"`
	Delivered       uint64                 `json:"delivered"`
	Refused         uint64                 `json:"refused"`
	HandlerFailures uint64                 `json:"handler_failures"`
	HistorySize     int                    `json:"history_size"`
	Subscribers     map[core.Kind][]string `json:"subscribers"`
}

// QueueStatus describes one role's inbound queue.
type QueueStatus struct {
	Role         string `json:"role"`
	Registered   bool   `json:"registered"`
	QueueLength  int    `json:"queue_length"`
	HandlerCount int    `json:"handler_count"`
}

// Options configures a Broker.
type Options struct {
	// HistorySize caps the recent-message ring buffer. Defaults to
	// DefaultHistorySize when zero or negative.
	HistorySize int
	// Logger receives delivery and dispatch diagnostics. Defaults to a
	// NoOpLogger.
	Logger logging.Logger
}

// Broker routes messages between registered roles. All registry state is
// guarded by one coarse mutex; handler dispatch happens outside the lock so
// handlers may themselves call back into the broker (to send a response,
// for example) without deadlocking.
type Broker struct {
	mu          sync.Mutex
	queues      map[string][]core.Message
	handlers    map[string][]handlerEntry
	subscribers map[core.Kind][]string
	active      map[string]struct{}

	history     []core.Message
	historyNext int
	historySize int

	delivered       uint64
	refused         uint64
	handlerFailures uint64

	logger logging.Logger
}

// New constructs an empty broker.
func New(optFns ...func(o *Options)) *Broker {
	opts := Options{
		HistorySize: DefaultHistorySize,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Broker{
		queues:      make(map[string][]core.Message),
		handlers:    make(map[string][]handlerEntry),
		subscribers: make(map[core.Kind][]string),
		active:      make(map[string]struct{}),
		history:     make([]core.Message, 0, opts.HistorySize),
		historySize: opts.HistorySize,
		logger:      opts.Logger,
	}
}

// Register creates the role's inbound queue and marks it deliverable.
// Registering an already-registered role is a no-op.
func (b *Broker) Register(role string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.queues[role]; !ok {
		b.queues[role] = nil
	}
	if _, ok := b.handlers[role]; !ok {
		b.handlers[role] = nil
	}
	b.active[role] = struct{}{}
	b.logger.Info("role registered", "role", role)
}

// Unregister marks the role undeliverable and clears its pending queue.
// Handlers and subscriptions are dropped as well. Idempotent.
func (b *Broker) Unregister(role string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.active, role)
	if _, ok := b.queues[role]; ok {
		b.queues[role] = nil
	}
	b.handlers[role] = nil
	for kind, subs := range b.subscribers {
		b.subscribers[kind] = removeString(subs, role)
	}
	b.logger.Info("role unregistered", "role", role)
}

// Registered reports whether the role is currently deliverable.
func (b *Broker) Registered(role string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.active[role]
	return ok
}

// RegisterHandler associates fn with the (role, kind) pair. Multiple
// handlers per pair are allowed; all are invoked on delivery.
func (b *Broker) RegisterHandler(role string, kind core.Kind, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[role] = append(b.handlers[role], handlerEntry{kind: kind, fn: fn})
	b.logger.Debug("handler registered", "role", role, "kind", kind)
}

// Subscribe adds the role to the broadcast fan-out list for kind.
// Duplicate subscriptions are ignored.
func (b *Broker) Subscribe(role string, kind core.Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.subscribers[kind] {
		if existing == role {
			return
		}
	}
	b.subscribers[kind] = append(b.subscribers[kind], role)
	b.logger.Debug("role subscribed", "role", role, "kind", kind)
}

// Send validates and delivers one message. It returns false (never an
// error, never a panic) when the message is malformed, expired or addressed
// to an unregistered role. On success the message is enqueued FIFO for the
// recipient, appended to the history ring and dispatched synchronously to
// every matching handler.
func (b *Broker) Send(msg core.Message) bool {
	if err := msg.Validate(); err != nil {
		b.refuse("message refused", msg, err)
		return false
	}
	if msg.Expired(time.Now()) {
		b.refuse("message refused", msg, core.ErrMessageExpired)
		return false
	}

	b.mu.Lock()
	if _, ok := b.active[msg.To]; !ok {
		b.mu.Unlock()
		b.refuse("message refused", msg, fmt.Errorf("%w: %s", core.ErrRecipientUnavailable, msg.To))
		return false
	}
	b.queues[msg.To] = append(b.queues[msg.To], msg)
	b.recordHistoryLocked(msg)
	b.delivered++
	targets := b.matchingHandlersLocked(msg.To, msg.Kind)
	b.mu.Unlock()

	b.dispatch(msg, targets)
	b.logger.Debug("message delivered", "id", msg.ID, "from", msg.From, "to", msg.To, "kind", msg.Kind)
	return true
}

// Broadcast constructs one message per current subscriber of kind
// (excluding the sender) and sends each independently. It returns the
// recipients that were successfully delivered to.
func (b *Broker) Broadcast(from string, kind core.Kind, payload map[string]any) []string {
	b.mu.Lock()
	subs := append([]string(nil), b.subscribers[kind]...)
	b.mu.Unlock()

	var delivered []string
	for _, sub := range subs {
		if sub == from {
			continue
		}
		msg := core.NewMessage(from, sub, kind, payload)
		if b.Send(msg) {
			delivered = append(delivered, sub)
		}
	}
	return delivered
}

// Drain pops up to limit messages from the role's inbound queue in FIFO
// order. A limit <= 0 drains the whole queue.
func (b *Broker) Drain(role string, limit int) []core.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	queue := b.queues[role]
	if len(queue) == 0 {
		return nil
	}
	n := len(queue)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]core.Message, n)
	copy(out, queue[:n])
	b.queues[role] = queue[n:]
	return out
}

// History returns a copy of the recent-message ring in chronological order.
func (b *Broker) History() []core.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.history) < b.historySize {
		return append([]core.Message(nil), b.history...)
	}
	out := make([]core.Message, 0, b.historySize)
	out = append(out, b.history[b.historyNext:]...)
	out = append(out, b.history[:b.historyNext]...)
	return out
}

// QueueStatus reports the state of one role's queue.
func (b *Broker) QueueStatus(role string) QueueStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, registered := b.active[role]
	return QueueStatus{
		Role:         role,
		Registered:   registered,
		QueueLength:  len(b.queues[role]),
		HandlerCount: len(b.handlers[role]),
	}
}

// Stats reports aggregate broker activity.
func (b *Broker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := Stats{
		Delivered:       b.delivered,
		Refused:         b.refused,
		HandlerFailures: b.handlerFailures,
		HistorySize:     len(b.history),
		Subscribers:     make(map[core.Kind][]string, len(b.subscribers)),
	}
	for role := range b.active {
		s.ActiveRoles = append(s.ActiveRoles, role)
	}
	for _, q := range b.queues {
		s.QueuedMessages += len(q)
	}
	for kind, subs := range b.subscribers {
		s.Subscribers[kind] = append([]string(nil), subs...)
	}
	return s
}

// HandlerFailures returns the count of contained handler errors/panics.
func (b *Broker) HandlerFailures() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handlerFailures
}

func (b *Broker) refuse(msg string, m core.Message, err error) {
	b.mu.Lock()
	b.refused++
	b.mu.Unlock()
	b.logger.Warn(msg, "id", m.ID, "from", m.From, "to", m.To, "kind", m.Kind, "error", err)
}

// recordHistoryLocked appends to the fixed-size ring, overwriting the
// oldest entry once full. Caller holds b.mu.
func (b *Broker) recordHistoryLocked(msg core.Message) {
	if len(b.history) < b.historySize {
		b.history = append(b.history, msg)
		return
	}
	b.history[b.historyNext] = msg
	b.historyNext = (b.historyNext + 1) % b.historySize
}

// matchingHandlersLocked copies the handlers registered for (role, kind) so
// dispatch can run outside the lock. Caller holds b.mu.
func (b *Broker) matchingHandlersLocked(role string, kind core.Kind) []Handler {
	var out []Handler
	for _, entry := range b.handlers[role] {
		if entry.kind == kind {
			out = append(out, entry.fn)
		}
	}
	return out
}

// dispatch invokes each handler, containing errors and panics per-handler
// so one misbehaving handler cannot starve the rest.
func (b *Broker) dispatch(msg core.Message, handlers []Handler) {
	for _, fn := range handlers {
		if err := b.invoke(msg, fn); err != nil {
			b.mu.Lock()
			b.handlerFailures++
			b.mu.Unlock()
			b.logger.Error("handler failed", "id", msg.ID, "to", msg.To, "kind", msg.Kind, "error", err)
		}
	}
}

func (b *Broker) invoke(msg core.Message, fn Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return fn(msg)
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
