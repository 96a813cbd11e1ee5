// Package core defines the shared data model for AgentWire: the wire
// message exchanged between agents, the workflow session record owned by the
// orchestrator, the satisfaction check outcome produced by the checker role,
// and the operation contracts each agent role must satisfy.
//
// Types in this package are deliberately free of transport and orchestration
// logic so that the broker, communicator and orchestrator packages can all
// depend on them without cycles.
package core
