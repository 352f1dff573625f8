package network

import (
	"fmt"
)

// ConvLayer describes a 2D convolution with square kernels and equal
// strides along both spatial dimensions. Inputs are zero padded by
// (Kernel-1)/2 on every side, so that a stride of 1 keeps the spatial
// size of odd kernels and a stride of s divides it by s.
type ConvLayer struct {
	Filters int
	Kernel  int
	Stride  int
}

// Padding returns the zero padding added to each side of the input
func (c ConvLayer) Padding() int {
	return (c.Kernel - 1) / 2
}

// OutSize returns the spatial size of the layer output for an input
// with spatial size in
func (c ConvLayer) OutSize(in int) int {
	return (in+2*c.Padding()-c.Kernel)/c.Stride + 1
}

// Architecture describes a network mapping a (Channels, Height, Width)
// input to Outputs values. Convolutional layers are applied first, the
// result is flattened, and then fully connected hidden layers are
// applied. All hidden layers use Activation. A final linear layer
// produces the outputs.
type Architecture struct {
	Channels int
	Height   int
	Width    int

	Conv       []ConvLayer
	Hidden     []int
	Activation string
	Outputs    int
}

// Validate checks that an Architecture can be built
func (a Architecture) Validate() error {
	if a.Channels < 1 || a.Height < 1 || a.Width < 1 {
		return fmt.Errorf("validate: input dimensions must be positive\n\t"+
			"have(%v×%v×%v)", a.Channels, a.Height, a.Width)
	}
	if a.Outputs < 1 {
		return fmt.Errorf("validate: must have at least one output\n\t"+
			"have(%v)", a.Outputs)
	}
	if _, err := NewActivation(a.Activation); err != nil {
		return fmt.Errorf("validate: %v", err)
	}

	h, w := a.Height, a.Width
	for i, layer := range a.Conv {
		if layer.Filters < 1 || layer.Kernel < 1 || layer.Stride < 1 {
			return fmt.Errorf("validate: convolution %v must have positive "+
				"filters, kernel, and stride\n\thave(%+v)", i, layer)
		}
		h, w = layer.OutSize(h), layer.OutSize(w)
		if h < 1 || w < 1 {
			return fmt.Errorf("validate: convolution %v reduces input to "+
				"%v×%v", i, h, w)
		}
	}

	for i, size := range a.Hidden {
		if size < 1 {
			return fmt.Errorf("validate: hidden layer %v must have positive "+
				"size\n\thave(%v)", i, size)
		}
	}
	return nil
}

// Features returns the number of input features for a single sample
func (a Architecture) Features() int {
	return a.Channels * a.Height * a.Width
}

// FlatSize returns the number of features produced by the
// convolutional layers for a single sample
func (a Architecture) FlatSize() int {
	channels, h, w := a.Channels, a.Height, a.Width
	for _, layer := range a.Conv {
		channels = layer.Filters
		h, w = layer.OutSize(h), layer.OutSize(w)
	}
	return channels * h * w
}

// Equal returns whether two Architectures describe the same network
func (a Architecture) Equal(b Architecture) bool {
	if a.Channels != b.Channels || a.Height != b.Height ||
		a.Width != b.Width || a.Outputs != b.Outputs ||
		a.Activation != b.Activation ||
		len(a.Conv) != len(b.Conv) || len(a.Hidden) != len(b.Hidden) {
		return false
	}
	for i := range a.Conv {
		if a.Conv[i] != b.Conv[i] {
			return false
		}
	}
	for i := range a.Hidden {
		if a.Hidden[i] != b.Hidden[i] {
			return false
		}
	}
	return true
}
