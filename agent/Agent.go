// Package agent defines an agent interface
package agent

import (
	"github.com/samuelfneumann/pongdqn/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent selects actions in stacked states, records the transitions
// those actions lead to, and learns from the recorded transitions. The
// driver calls SelectAction, then RecordTransition, then Learn once per
// environment step.
type Agent interface {
	// SelectAction returns the action to take in state
	SelectAction(state timestep.StackedState) (int, error)

	// RecordTransition records an experienced transition
	RecordTransition(t timestep.Transition) error

	// Learn performs a single update to the agent's weights
	Learn() error
}

// Monitored is an Agent that exposes its training progress
type Monitored interface {
	Agent

	Epsilon() float64 // Current exploration rate
	Steps() int       // Number of recorded transitions
	ReplayLen() int   // Number of transitions in the replay buffer
}
