package testutil

import (
	"time"

	"github.com/agentwire/agentwire/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().From("intent").To("executor").Expired().Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	msg core.Message
}

// NewMessageBuilder creates a builder for a valid notification from "a" to "b".
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{msg: core.NewMessage("a", "b", core.KindNotification, nil)}
}

// From sets the sender id (chainable).
func (b *MessageBuilder) From(id string) *MessageBuilder { b.msg.From = id; return b }

// To sets the recipient id (chainable).
func (b *MessageBuilder) To(id string) *MessageBuilder { b.msg.To = id; return b }

// Kind sets the message kind (chainable).
func (b *MessageBuilder) Kind(k core.Kind) *MessageBuilder { b.msg.Kind = k; return b }

// Priority sets the delivery priority (chainable).
func (b *MessageBuilder) Priority(p core.Priority) *MessageBuilder { b.msg.Priority = p; return b }

// Payload sets the message payload (chainable).
func (b *MessageBuilder) Payload(p map[string]any) *MessageBuilder { b.msg.Payload = p; return b }

// Correlation sets the correlation id (chainable).
func (b *MessageBuilder) Correlation(id string) *MessageBuilder {
	b.msg.CorrelationID = id
	return b
}

// TTL sets the message lifetime (chainable).
func (b *MessageBuilder) TTL(d time.Duration) *MessageBuilder { b.msg.TTL = d; return b }

// Expired backdates the message past a short TTL (chainable).
func (b *MessageBuilder) Expired() *MessageBuilder {
	b.msg.TTL = 10 * time.Millisecond
	b.msg.CreatedAt = time.Now().Add(-time.Second)
	return b
}

// Build returns the constructed message.
func (b *MessageBuilder) Build() core.Message { return b.msg }
