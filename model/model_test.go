package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("test")
	m.AddResponse("ping", "pong")

	resp, err := m.Complete(context.Background(), Request{Input: "ping"})

	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestMockModel_Fallback(t *testing.T) {
	m := NewMockModel("test")
	m.SetFallback("default")

	resp, err := m.Complete(context.Background(), Request{Input: "anything"})

	require.NoError(t, err)
	assert.Equal(t, "default", resp.Text)
}

func TestMockModel_NoMatchErrors(t *testing.T) {
	m := NewMockModel("test")
	_, err := m.Complete(context.Background(), Request{Input: "unknown"})
	assert.Error(t, err)
}

func TestMockModel_Fail(t *testing.T) {
	m := NewMockModel("test")
	m.AddResponse("ping", "pong")
	m.Fail(errors.New("provider down"))

	_, err := m.Complete(context.Background(), Request{Input: "ping"})
	assert.EqualError(t, err, "provider down")
}

func TestMockModel_Info(t *testing.T) {
	m := NewMockModel("test")
	assert.Equal(t, Info{Name: "test", Provider: "mock"}, m.Info())
}
