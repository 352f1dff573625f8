// Package solver implements functionality to wrap Gorgonia Solvers
// so that they can be named and created from configuration files.
package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam    Type = "Adam"
	Vanilla Type = "Vanilla"
	RMSProp Type = "RMSProp"
)

// Solver wraps Gorgonia Solvers together with the configuration that
// created them.
type Solver struct {
	G.Solver
	Type
	Config
}

// New returns a new Solver of type t. Parameters that do not apply to
// the chosen solver are ignored: epsilon applies to Adam and RMSProp,
// beta1 to Adam, and beta2 is Adam's second moment decay or RMSProp's
// decay rate.
//
// Gradients are never divided by a batch size, since the losses used
// with these solvers are already averaged over the batch.
func New(t Type, stepSize, epsilon, beta1, beta2 float64) (*Solver, error) {
	if stepSize <= 0 {
		return nil, fmt.Errorf("new: step size must be positive\n\t"+
			"have(%v)", stepSize)
	}

	switch t {
	case Adam:
		return NewAdam(stepSize, epsilon, beta1, beta2, 1)
	case RMSProp:
		return NewRMSProp(stepSize, epsilon, beta2, 1, -1)
	case Vanilla:
		return NewVanilla(stepSize, 1, -1)
	default:
		return nil, fmt.Errorf("new: unknown solver type %q", t)
	}
}

// newSolver returns a new solver with the given type and configuration.
func newSolver(t Type, c Config) (*Solver, error) {
	if !c.ValidType(t) {
		return nil, fmt.Errorf("newSolver: invalid solver type %v for "+
			"configuration %T", t, c)
	}
	solver := Solver{Type: t, Config: c}
	solver.Solver = solver.Config.Create()

	return &solver, nil
}

// String implements the fmt.Stringer interface
func (s *Solver) String() string {
	return fmt.Sprintf("{%v Solver: %+v}", s.Type, s.Config)
}

// Config implements a Gorgonia Solver configuration and can be used to
// create Gorgonia Solvers they describe.
type Config interface {
	Create() G.Solver

	// ValidType returns whether a specific Solver type can be created
	// with the Config
	ValidType(Type) bool
}

// commonOpts returns the options shared by every solver type. Gradients
// are clipped to [-clip, clip] when clip is positive.
func commonOpts(stepSize float64, batch int, clip float64) []G.SolverOpt {
	opts := []G.SolverOpt{
		G.WithLearnRate(stepSize),
		G.WithBatchSize(float64(batch)),
	}
	if clip > 0 {
		opts = append(opts, G.WithClip(clip))
	}
	return opts
}
