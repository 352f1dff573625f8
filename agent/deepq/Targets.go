package deepq

import (
	"github.com/samuelfneumann/pongdqn/timestep"
	"gonum.org/v1/gonum/floats"
)

// bellmanTarget returns the update target for an action with reward
// reward whose next state has action values next. Terminal transitions
// have the reward as their target.
func bellmanTarget(reward, gamma float64, terminal bool,
	next []float64) float64 {
	if terminal {
		return reward
	}
	return reward + gamma*floats.Max(next)
}

// fillTargets fills the row major (len(batch), numActions) matrices
// targets and mask. Row i of mask is the one-hot encoding of the action
// taken in batch[i], and row i of targets holds the Bellman target of
// batch[i] in that action's column and zero elsewhere. nextValues holds
// the target network's action values for each next state, row major.
func fillTargets(batch []timestep.Transition, nextValues []float64,
	gamma float64, numActions int, targets, mask []float64) {
	for i := range targets {
		targets[i] = 0
		mask[i] = 0
	}

	for i, t := range batch {
		next := nextValues[i*numActions : (i+1)*numActions]
		slot := i*numActions + t.Action

		targets[slot] = bellmanTarget(t.Reward, gamma, t.Terminal, next)
		mask[slot] = 1
	}
}
