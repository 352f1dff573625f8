package deepq

import (
	"fmt"

	"github.com/samuelfneumann/pongdqn/agent/policy"
	"github.com/samuelfneumann/pongdqn/expreplay"
	"github.com/samuelfneumann/pongdqn/initwfn"
	"github.com/samuelfneumann/pongdqn/network"
	"github.com/samuelfneumann/pongdqn/solver"
)

// Config implements a configuration for a DeepQ agent
type Config struct {
	// Network maps stacked frames to one value per action. Its input
	// channels are the number of stacked frames.
	Network network.Architecture
	InitWFn *initwfn.InitWFn // Initialization algorithm for weights
	Solver  *solver.Solver   // Solver for learning weights

	// Experience replay parameters
	ExpReplay expreplay.Config

	// Behaviour policy exploration. Epsilon.ObservePeriod is also the
	// number of steps of pure random exploration before learning
	// begins.
	Epsilon policy.EpsilonSchedule

	Gamma                float64 // Discount factor
	TargetUpdateInterval int     // Steps between target network syncs

	Seed uint64
}

// BatchSize returns the batch size of the agent constructed using this
// Config
func (c Config) BatchSize() int {
	return c.ExpReplay.SampleSize
}

// NumActions returns the number of actions of the agent constructed
// using this Config
func (c Config) NumActions() int {
	return c.Network.Outputs
}

// ObservePeriod returns the number of steps before learning begins
func (c Config) ObservePeriod() int {
	return c.Epsilon.ObservePeriod
}

// Validate checks a Config to ensure it is a valid configuration of a
// DeepQ agent.
func (c Config) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("validate: network: %v", err)
	}
	if c.InitWFn == nil {
		return fmt.Errorf("validate: no weight initializer")
	}
	if c.Solver == nil {
		return fmt.Errorf("validate: no solver")
	}
	if err := c.ExpReplay.Validate(); err != nil {
		return fmt.Errorf("validate: replay: %v", err)
	}
	if err := c.Epsilon.Validate(); err != nil {
		return fmt.Errorf("validate: epsilon: %v", err)
	}

	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1]\n\t"+
			"have(%v)", c.Gamma)
	}

	if c.TargetUpdateInterval < 1 {
		return fmt.Errorf("validate: target networks must be updated at "+
			"positive timestep intervals \n\twant(>0) \n\thave(%v)",
			c.TargetUpdateInterval)
	}

	return nil
}
