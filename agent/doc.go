// Package agent provides concrete role agent implementations: adapters that
// lift plain functions into role agents, model-backed agents that drive a
// text model, and remote proxies that satisfy the role contracts by
// round-tripping requests through a communicator.
package agent
