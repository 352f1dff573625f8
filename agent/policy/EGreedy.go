// Package policy implements epsilon-greedy action selection over
// discrete actions and the schedule which anneals epsilon
package policy

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/pongdqn/utils/floatutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// EpsilonSchedule anneals epsilon exponentially after an observation
// period. Before ObservePeriod steps have elapsed epsilon stays at
// Initial. Afterwards it decays towards Final with DecaySteps
// characteristic steps and never leaves [Final, Initial].
type EpsilonSchedule struct {
	Initial       float64
	Final         float64
	ObservePeriod int
	DecaySteps    int
}

// Validate checks that the schedule describes probabilities which do
// not increase over time
func (e EpsilonSchedule) Validate() error {
	if e.Final < 0 || e.Initial > 1 || e.Final > e.Initial {
		return fmt.Errorf("validate: epsilon must satisfy 0 <= final <= "+
			"initial <= 1\n\thave(final=%v, initial=%v)", e.Final, e.Initial)
	}
	if e.ObservePeriod < 0 {
		return fmt.Errorf("validate: observe period must be >= 0\n\t"+
			"have(%v)", e.ObservePeriod)
	}
	if e.DecaySteps < 1 {
		return fmt.Errorf("validate: decay steps must be >= 1\n\thave(%v)",
			e.DecaySteps)
	}
	return nil
}

// At returns epsilon once steps transitions have been recorded
func (e EpsilonSchedule) At(steps int) float64 {
	if steps <= e.ObservePeriod {
		return e.Initial
	}

	decay := math.Exp(-float64(steps-e.ObservePeriod) / float64(e.DecaySteps))
	epsilon := e.Final + (e.Initial-e.Final)*decay
	return floatutils.Clip(epsilon, e.Final, e.Initial)
}

// EGreedy makes the random choices of an epsilon-greedy policy over
// numActions discrete actions from its own seeded source
type EGreedy struct {
	numActions int
	rng        *rand.Rand
}

// NewEGreedy returns a new EGreedy over numActions actions
func NewEGreedy(numActions int, seed uint64) (*EGreedy, error) {
	if numActions < 1 {
		return nil, fmt.Errorf("newEGreedy: must have at least one action"+
			"\n\thave(%v)", numActions)
	}
	return &EGreedy{
		numActions: numActions,
		rng:        rand.New(rand.NewSource(seed)),
	}, nil
}

// NumActions returns the number of actions the policy chooses between
func (e *EGreedy) NumActions() int {
	return e.numActions
}

// Explore returns true with probability epsilon
func (e *EGreedy) Explore(epsilon float64) bool {
	return e.rng.Float64() < epsilon
}

// Random returns an action drawn uniformly from [0, NumActions())
func (e *EGreedy) Random() int {
	return e.rng.Intn(e.numActions)
}

// Greedy returns the index of the largest action value. Ties are
// broken in favour of the lowest index.
func Greedy(values []float64) int {
	return floats.MaxIdx(values)
}
