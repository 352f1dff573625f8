package solver

import G "gorgonia.org/gorgonia"

// RMSPropConfig holds the settings of an RMSProp solver. Rho is the
// decay rate of the squared gradient average.
type RMSPropConfig struct {
	StepSize float64
	Epsilon  float64
	Rho      float64
	Batch    int
	Clip     float64 // <= 0 if no clipping
}

// NewDefaultRMSProp returns a new RMSProp Solver with default
// hyperparameters
func NewDefaultRMSProp(stepSize float64, batchSize int) (*Solver, error) {
	return NewRMSProp(stepSize, 1e-8, 0.999, batchSize, -1.0)
}

// NewRMSProp returns a new RMSProp Solver
func NewRMSProp(stepSize, epsilon, rho float64, batchSize int,
	clip float64) (*Solver, error) {
	rmsprop := RMSPropConfig{
		StepSize: stepSize,
		Epsilon:  epsilon,
		Rho:      rho,
		Batch:    batchSize,
		Clip:     clip,
	}

	return newSolver(RMSProp, rmsprop)
}

// Create returns the Gorgonia solver described by r
func (r RMSPropConfig) Create() G.Solver {
	opts := append(commonOpts(r.StepSize, r.Batch, r.Clip),
		G.WithEps(r.Epsilon), G.WithRho(r.Rho))
	return G.NewRMSPropSolver(opts...)
}

// ValidType reports whether t names RMSProp
func (r RMSPropConfig) ValidType(t Type) bool {
	return t == RMSProp
}
