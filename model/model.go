package model

import (
	"context"
	"fmt"
	"sync"
)

// Request captures one completion call's input.
type Request struct {
	// Instructions carries system-level guidance for the model.
	Instructions string `json:"instructions,omitempty"`
	// Input is the user turn to complete.
	Input string `json:"input"`
}

// Response is a completed (non-streaming) model reply.
type Response struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"` // "stop", "length", etc.
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the interface role agents use to drive text generation.
type Model interface {
	Complete(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Replies are looked up by exact input text, falling back to an optional
// default reply.
type MockModel struct {
	info Info

	mu        sync.RWMutex
	responses map[string]string
	fallback  string
	err       error
}

// NewMockModel constructs an empty MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input.
func (m *MockModel) AddResponse(input, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = response
}

// SetFallback sets the reply used when no canned completion matches.
func (m *MockModel) SetFallback(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = response
}

// Fail makes every subsequent Complete call return err.
func (m *MockModel) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Complete implements Model.
func (m *MockModel) Complete(_ context.Context, req Request) (Response, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return Response{}, m.err
	}
	if text, ok := m.responses[req.Input]; ok {
		return Response{Text: text, FinishReason: "stop"}, nil
	}
	if m.fallback != "" {
		return Response{Text: m.fallback, FinishReason: "stop"}, nil
	}
	return Response{}, fmt.Errorf("no canned response for input %q", req.Input)
}

// Info returns metadata describing this mock implementation.
func (m *MockModel) Info() Info { return m.info }
