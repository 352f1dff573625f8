package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

type activationType string

const (
	relu     activationType = "relu"
	identity activationType = "identity"
	tanh     activationType = "tanh"
)

// activations maps each activation type to the graph operation
// applying it
var activations = map[activationType]func(*G.Node) (*G.Node, error){
	relu:     G.Rectify,
	tanh:     G.Tanh,
	identity: func(x *G.Node) (*G.Node, error) { return x, nil },
}

// Activation is an element-wise nonlinearity applied to the output of
// a layer
type Activation struct {
	activationType
	f func(x *G.Node) (*G.Node, error)
}

// NewActivation returns the Activation named name, one of "relu",
// "tanh", or "identity". The empty name is ReLU.
func NewActivation(name string) (*Activation, error) {
	t := activationType(name)
	if t == "" {
		t = relu
	}
	f, ok := activations[t]
	if !ok {
		return nil, fmt.Errorf("newActivation: unknown activation %q", name)
	}
	return &Activation{activationType: t, f: f}, nil
}

func (a *Activation) fwd(x *G.Node) (*G.Node, error) {
	return a.f(x)
}

// String returns the name of the Activation
func (a *Activation) String() string {
	return string(a.activationType)
}

// IsIdentity reports whether the Activation leaves its input unchanged
func (a *Activation) IsIdentity() bool {
	return a.activationType == identity
}

// Identity returns the identity Activation, used on output layers
func Identity() *Activation {
	return mustActivation(identity)
}

// ReLU returns the rectified linear Activation
func ReLU() *Activation {
	return mustActivation(relu)
}

// TanH returns the hyperbolic tangent Activation
func TanH() *Activation {
	return mustActivation(tanh)
}

func mustActivation(t activationType) *Activation {
	a, err := NewActivation(string(t))
	if err != nil {
		panic(err)
	}
	return a
}
