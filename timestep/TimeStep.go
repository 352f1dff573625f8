// Package timestep implements timesteps of the agent-environment
// interaction and the states and transitions built from them
package timestep

import (
	"fmt"
)

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	Number int
	Reward float64

	// Score is the cumulative reward of the current game. It is
	// observational only.
	Score float64

	// Point is true if the step ended a rally and the ball was served
	// again
	Point bool
}

func (t TimeStep) String() string {
	str := "TimeStep | Reward:  %.2f  |  Score: %.2f  |  Point: %v  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.Reward, t.Score, t.Point, t.Number)
}
