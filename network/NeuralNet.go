// Package network implements value networks as Gorgonia computational
// graphs
package network

import (
	"encoding/gob"

	G "gorgonia.org/gorgonia"
)

// NeuralNet is a feed forward network built in its own computational
// graph. The network's input node is set with SetInput, and after a VM
// over Graph() has been run, Output() holds the network's prediction
// for that input.
type NeuralNet interface {
	Graph() *G.ExprGraph
	Clone() (NeuralNet, error)
	CloneWithBatch(int) (NeuralNet, error)
	Architecture() Architecture
	BatchSize() int
	Features() int
	Outputs() int
	SetInput([]float64) error

	// Set overwrites all learnable parameters with those of another
	// network of the same architecture
	Set(NeuralNet) error

	// Weights returns a copy of the learnable parameters in the order
	// of Learnables
	Weights() [][]float64
	SetWeights([][]float64) error

	Learnables() G.Nodes
	Model() []G.ValueGrad
	Output() G.Value
	Prediction() *G.Node

	gob.GobEncoder
	gob.GobDecoder
}
