// Package initwfn implements seeded weight initializers for Gorgonia
// graphs so that networks can be reproduced from a configuration and a
// seed.
package initwfn

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Type describes different types of InitWFn that are available.
// Type is used to implement a basic type system of InitWFn's.
type Type string

// Available InitWFn types
const (
	GlorotU Type = "GlorotU"
	GlorotN Type = "GlorotN"
	HeU     Type = "HeU"
	HeN     Type = "HeN"
	Zeroes  Type = "Zeroes"
)

// InitWFn wraps a weight initializer Config so that it can be named in
// configuration files and created with different seeds.
type InitWFn struct {
	Type
	Config
}

// New returns the InitWFn of type t. The gain is ignored by types
// that do not use one.
func New(t Type, gain float64) (*InitWFn, error) {
	switch t {
	case GlorotU:
		return NewGlorotU(gain)
	case GlorotN:
		return NewGlorotN(gain)
	case HeU:
		return NewHeU(gain)
	case HeN:
		return NewHeN(gain)
	case Zeroes:
		return NewZeroes()
	default:
		return nil, fmt.Errorf("new: unknown initializer type %q", t)
	}
}

// newInitWFn returns a new InitWFn
func newInitWFn(c Config) (*InitWFn, error) {
	return &InitWFn{Type: c.Type(), Config: c}, nil
}

// InitWFn returns a Gorgonia InitWFn drawing its weights from a source
// seeded with seed. Successive weight tensors initialized by the same
// returned function continue the same random stream.
func (w *InitWFn) InitWFn(seed uint64) G.InitWFn {
	return w.Config.Create(rand.NewSource(seed))
}

// String implements the fmt.Stringer interface
func (w *InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn: %v}", w.Type, w.Config)
}

// Config implements a weight initializer configuration and can be used
// to create the described Gorgonia InitWFn's.
type Config interface {
	// Create returns the Gorgonia InitWFn that the Config describes,
	// drawing randomness from src
	Create(src rand.Source) G.InitWFn

	// Type returns the type of Gorgonia InitWFn that is returned
	Type() Type
}

// fans returns the fan-in and fan-out of a weight tensor with shape s.
// Dense weights have shape (in, out) and convolution filters have
// shape (out, in, kernelHeight, kernelWidth).
func fans(s ...int) (in, out float64) {
	switch len(s) {
	case 2:
		return float64(s[0]), float64(s[1])
	case 4:
		receptive := s[2] * s[3]
		return float64(s[1] * receptive), float64(s[0] * receptive)
	default:
		size := float64(tensor.Shape(s).TotalSize())
		return size, size
	}
}

// sampled returns an InitWFn which fills weights with samples from the
// distribution built by dist for each weight shape
func sampled(dist func(s ...int) distuv.Rander) G.InitWFn {
	return func(dt tensor.Dtype, s ...int) interface{} {
		d := dist(s...)
		size := tensor.Shape(s).TotalSize()

		switch dt {
		case tensor.Float64:
			out := make([]float64, size)
			for i := range out {
				out[i] = d.Rand()
			}
			return out

		case tensor.Float32:
			out := make([]float32, size)
			for i := range out {
				out[i] = float32(d.Rand())
			}
			return out

		default:
			panic(fmt.Sprintf("initwfn: unsupported dtype %v", dt))
		}
	}
}
