package solver

import G "gorgonia.org/gorgonia"

// VanillaConfig describes a configuration of the vanilla gradient
// descent solver.
type VanillaConfig struct {
	StepSize float64
	Batch    int
	Clip     float64 // <= 0 if no clipping
}

// NewVanilla returns a new Vanilla Solver
func NewVanilla(stepSize float64, batchSize int,
	clip float64) (*Solver, error) {
	vanilla := VanillaConfig{
		StepSize: stepSize,
		Batch:    batchSize,
		Clip:     clip,
	}

	return newSolver(Vanilla, vanilla)
}

// Create returns the Gorgonia solver described by v
func (v VanillaConfig) Create() G.Solver {
	return G.NewVanillaSolver(commonOpts(v.StepSize, v.Batch, v.Clip)...)
}

// ValidType reports whether t names plain gradient descent
func (v VanillaConfig) ValidType(t Type) bool {
	return t == Vanilla
}
