package comm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/agentwire/agentwire/broker"
	"github.com/agentwire/agentwire/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRequest_RoundTrip(t *testing.T) {
	b := broker.New()
	client := New("intent", b)
	server := New("executor", b)

	server.RegisterHandler(core.KindRequest, func(msg core.Message) error {
		server.SendResponse(msg, map[string]any{"echo": msg.Payload["q"]})
		return nil
	})

	resp, err := client.SendRequest(context.Background(), "executor", map[string]any{"q": "hello"}, time.Second)

	require.NoError(t, err)
	assert.Equal(t, "hello", resp["echo"])
	assert.Zero(t, client.PendingRequests())
}

func TestSendRequest_Timeout(t *testing.T) {
	b := broker.New()
	client := New("intent", b)
	_ = New("executor", b) // registered but never responds

	start := time.Now()
	_, err := client.SendRequest(context.Background(), "executor", map[string]any{"q": 1}, 10*time.Millisecond)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrRequestTimeout), "expected ErrRequestTimeout, got %v", err)
	assert.Less(t, elapsed, 500*time.Millisecond)
	assert.Zero(t, client.PendingRequests(), "pending slot must be cleaned up after timeout")
}

func TestSendRequest_LateResponseNeverResolves(t *testing.T) {
	b := broker.New()
	client := New("intent", b)
	server := New("executor", b)

	var captured core.Message
	server.RegisterHandler(core.KindRequest, func(msg core.Message) error {
		captured = msg
		return nil
	})

	_, err := client.SendRequest(context.Background(), "executor", nil, 10*time.Millisecond)
	require.ErrorIs(t, err, core.ErrRequestTimeout)

	// Respond after the caller has already timed out.
	assert.True(t, server.SendResponse(captured, map[string]any{"too": "late"}))
	assert.Zero(t, client.PendingRequests())
}

func TestSendRequest_UnregisteredTarget(t *testing.T) {
	b := broker.New()
	client := New("intent", b)

	_, err := client.SendRequest(context.Background(), "ghost", nil, time.Second)
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrRequestTimeout, "refusal should fail fast, not time out")
	assert.Zero(t, client.PendingRequests())
}

func TestSendRequest_ContextCancellation(t *testing.T) {
	b := broker.New()
	client := New("intent", b)
	_ = New("executor", b)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.SendRequest(ctx, "executor", nil, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, client.PendingRequests())
}

func TestSendRequest_ConcurrentCorrelation(t *testing.T) {
	b := broker.New()
	client := New("intent", b)
	server := New("executor", b)

	// Echo each request's own sequence number back on its correlation id.
	server.RegisterHandler(core.KindRequest, func(msg core.Message) error {
		go server.SendResponse(msg, map[string]any{"n": msg.Payload["n"]})
		return nil
	})

	const calls = 20
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.SendRequest(context.Background(), "executor", map[string]any{"n": i}, time.Second)
			if assert.NoError(t, err) {
				assert.Equal(t, i, resp["n"], "response payload must match its own request")
			}
		}(i)
	}
	wg.Wait()
	assert.Zero(t, client.PendingRequests())
}

func TestSendNotification_NoCorrelation(t *testing.T) {
	b := broker.New()
	client := New("intent", b)
	_ = New("executor", b)

	require.True(t, client.SendNotification("executor", map[string]any{"event": "ping"}))

	msgs := b.Drain("executor", 0)
	require.Len(t, msgs, 1)
	assert.Equal(t, core.KindNotification, msgs[0].Kind)
	assert.Empty(t, msgs[0].CorrelationID)
}

func TestBroadcastAndSubscribe(t *testing.T) {
	b := broker.New()
	intent := New("intent", b)
	executor := New("executor", b)
	checker := New("checker", b)

	executor.Subscribe(core.KindNotification)
	checker.Subscribe(core.KindNotification)

	delivered := intent.Broadcast(core.KindNotification, map[string]any{"event": "update"})
	assert.ElementsMatch(t, []string{"executor", "checker"}, delivered)
	assert.Len(t, executor.Drain(0), 1)
}

func TestClose_Unregisters(t *testing.T) {
	b := broker.New()
	client := New("intent", b)
	other := New("executor", b)

	client.Close()
	assert.False(t, b.Registered("intent"))
	assert.False(t, other.SendNotification("intent", nil))
}
