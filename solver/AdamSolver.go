package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// AdamConfig describes a configuration of the Adam solver
type AdamConfig struct {
	StepSize float64
	Epsilon  float64 // Smoothing factor
	Beta1    float64
	Beta2    float64
	Batch    int
}

// NewDefaultAdam returns a new Adam Solver with the moment decay rates
// and smoothing factor commonly used for deep Q-networks
func NewDefaultAdam(stepSize float64, batchSize int) (*Solver, error) {
	return NewAdam(stepSize, 1e-7, 0.9, 0.999, batchSize)
}

// NewAdam returns a new Adam Solver
func NewAdam(stepSize, epsilon, beta1, beta2 float64, batchSize int) (*Solver,
	error) {
	if beta1 < 0 || beta1 >= 1 || beta2 < 0 || beta2 >= 1 {
		return nil, fmt.Errorf("newAdam: moment decay rates must be in "+
			"[0, 1)\n\thave(β1=%v, β2=%v)", beta1, beta2)
	}

	adam := AdamConfig{
		StepSize: stepSize,
		Epsilon:  epsilon,
		Beta1:    beta1,
		Beta2:    beta2,
		Batch:    batchSize,
	}

	return newSolver(Adam, adam)
}

// Create returns the Gorgonia solver described by a. Adam is never
// clipped.
func (a AdamConfig) Create() G.Solver {
	opts := append(commonOpts(a.StepSize, a.Batch, 0), G.WithEps(a.Epsilon),
		G.WithBeta1(a.Beta1), G.WithBeta2(a.Beta2))
	return G.NewAdamSolver(opts...)
}

// ValidType reports whether t names Adam
func (a AdamConfig) ValidType(t Type) bool {
	return t == Adam
}
