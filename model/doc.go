// Package model defines the minimal text completion interface consumed by
// model-backed role agents, plus a deterministic in-memory implementation
// for tests. Provider adapters live in the subpackages.
package model
