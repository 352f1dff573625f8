package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Cardinality determines the cardinality of a number (discrete or
// continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an action specification, which tells the cardinality
// and bounds of the actions of an environment
type Spec struct {
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new action specification. Bounds are inclusive.
func NewSpec(lowerBound, upperBound mat.Vector,
	cardinality Cardinality) Spec {
	if lowerBound.Len() != upperBound.Len() {
		panic(fmt.Sprintf("lower bounds length %v must match upper bounds "+
			"length %v", lowerBound.Len(), upperBound.Len()))
	}
	return Spec{lowerBound, upperBound, cardinality}
}

// NewDiscreteSpec returns the specification of n one-dimensional
// discrete actions enumerated from 0
func NewDiscreteSpec(n int) Spec {
	lower := mat.NewVecDense(1, []float64{0})
	upper := mat.NewVecDense(1, []float64{float64(n - 1)})

	return NewSpec(lower, upper, Discrete)
}

// NumActions returns the number of one-dimensional discrete actions
// described by the Spec, or 0 if the Spec is not of that kind
func (s Spec) NumActions() int {
	if s.Cardinality != Discrete || s.LowerBound.Len() != 1 {
		return 0
	}
	return int(s.UpperBound.AtVec(0)-s.LowerBound.AtVec(0)) + 1
}

// Contains returns whether a one-dimensional discrete action lies
// within the bounds of the Spec
func (s Spec) Contains(action int) bool {
	if s.NumActions() == 0 {
		return false
	}
	a := float64(action)
	return a >= s.LowerBound.AtVec(0) && a <= s.UpperBound.AtVec(0)
}
