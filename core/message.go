package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a message on the wire. The set is closed; the broker
// refuses messages carrying a kind outside it.
type Kind string

const (
	// KindRequest asks the recipient to perform work and reply with a
	// response correlated via CorrelationID.
	KindRequest Kind = "request"
	// KindResponse answers a previous request, carrying the originating
	// request's correlation id.
	KindResponse Kind = "response"
	// KindNotification is fire-and-forget; no reply is expected.
	KindNotification Kind = "notification"
	// KindError reports a failure out-of-band.
	KindError Kind = "error"
	// KindHeartbeat signals liveness.
	KindHeartbeat Kind = "heartbeat"
)

// Valid reports whether k is a member of the closed kind set.
func (k Kind) Valid() bool {
	switch k {
	case KindRequest, KindResponse, KindNotification, KindError, KindHeartbeat:
		return true
	}
	return false
}

// Priority orders messages by urgency. It is carried on the wire for
// consumers that want it; the broker itself delivers FIFO per recipient.
type Priority string

const (
	// PriorityLow marks background traffic.
	PriorityLow Priority = "low"
	// PriorityNormal is the default for all constructed messages.
	PriorityNormal Priority = "normal"
	// PriorityHigh marks latency-sensitive traffic.
	PriorityHigh Priority = "high"
	// PriorityUrgent marks traffic that should preempt everything else.
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a member of the closed priority set.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Message is the unit of transport between agent roles. Instances are
// transient: they are consumed once drained or dispatched, or dropped when
// expired. Retries and MaxRetries are carried for wire compatibility but the
// broker never consults them; there is no automatic redelivery.
type Message struct {
	ID            string         `json:"id"`
	From          string         `json:"from"`
	To            string         `json:"to"`
	Kind          Kind           `json:"kind"`
	Priority      Priority       `json:"priority"`
	Payload       map[string]any `json:"payload"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	TTL           time.Duration  `json:"ttl,omitempty"`
	Retries       int            `json:"retries"`
	MaxRetries    int            `json:"max_retries"`
}

// NewMessage constructs a message with a generated id, normal priority and
// the current timestamp.
func NewMessage(from, to string, kind Kind, payload map[string]any) Message {
	return Message{
		ID:         uuid.NewString(),
		From:       from,
		To:         to,
		Kind:       kind,
		Priority:   PriorityNormal,
		Payload:    payload,
		CreatedAt:  time.Now(),
		MaxRetries: 3,
	}
}

// Validate checks the structural invariants: non-empty ids and enum
// membership for kind and priority. All failures wrap ErrInvalidMessage.
func (m Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: empty message id", ErrInvalidMessage)
	}
	if m.From == "" {
		return fmt.Errorf("%w: empty sender id", ErrInvalidMessage)
	}
	if m.To == "" {
		return fmt.Errorf("%w: empty recipient id", ErrInvalidMessage)
	}
	if !m.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMessage, m.Kind)
	}
	if !m.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidMessage, m.Priority)
	}
	return nil
}

// Expired reports whether the message's TTL has elapsed at the given time.
// A zero TTL means the message never expires.
func (m Message) Expired(now time.Time) bool {
	return m.TTL > 0 && now.Sub(m.CreatedAt) > m.TTL
}
