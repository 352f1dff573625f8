package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestDiscreteSpec(t *testing.T) {
	spec := NewDiscreteSpec(3)

	assert.Equal(t, 3, spec.NumActions())
	assert.Equal(t, Discrete, spec.Cardinality)
	for a := 0; a < 3; a++ {
		assert.True(t, spec.Contains(a), "action %d", a)
	}
	assert.False(t, spec.Contains(-1))
	assert.False(t, spec.Contains(3))
}

func TestContinuousSpecHasNoActions(t *testing.T) {
	bound := mat.NewVecDense(1, []float64{1})
	spec := NewSpec(bound, bound, Continuous)

	assert.Equal(t, 0, spec.NumActions())
	assert.False(t, spec.Contains(1))
}

func TestNewSpecPanicsOnBoundMismatch(t *testing.T) {
	assert.Panics(t, func() {
		NewSpec(mat.NewVecDense(1, nil), mat.NewVecDense(2, nil), Discrete)
	})
}
