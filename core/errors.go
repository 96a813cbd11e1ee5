package core

import "errors"

// Failure taxonomy for message delivery and request/response round-trips.
// Broker.Send surfaces the first three as a false return plus a log entry;
// they are exported so tests and stats consumers can match on them.
var (
	// ErrInvalidMessage indicates a structurally malformed message
	// (empty ids or an unknown kind/priority).
	ErrInvalidMessage = errors.New("invalid message")

	// ErrRecipientUnavailable indicates the target role is not currently
	// registered with the broker.
	ErrRecipientUnavailable = errors.New("recipient not registered")

	// ErrMessageExpired indicates the message's TTL elapsed before
	// delivery was attempted.
	ErrMessageExpired = errors.New("message expired")

	// ErrRequestTimeout indicates a Communicator request exceeded its
	// timeout while waiting for a correlated response.
	ErrRequestTimeout = errors.New("request timed out")
)
