package expreplay

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Selector implements functionality for choosing which data should be
// sampled from an experience replay buffer
type Selector interface {
	// choose selects the positions, counted from the oldest stored
	// transition, at which data should be sampled from the buffer
	choose(m *Memory) []int

	// BatchSize returns the number of elements that will be selected
	BatchSize() int
}

// uniformSelector is a Selector which selects data from an experience
// replay buffer uniformly randomly without replacement
type uniformSelector struct {
	samples int
	src     rand.Source
}

// NewUniformSelector returns a new Selector which selects distinct
// data uniformly randomly from an experience replay buffer. Batches
// drawn on different calls are independent.
func NewUniformSelector(samples int, seed uint64) Selector {
	return &uniformSelector{samples: samples, src: rand.NewSource(seed)}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (u *uniformSelector) BatchSize() int {
	return u.samples
}

// choose selects a number of indices at which to draw data from the
// buffer
func (u *uniformSelector) choose(m *Memory) []int {
	selected := make([]int, u.samples)
	sampleuv.WithoutReplacement(selected, m.Len(), u.src)
	return selected
}
