package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Layer is a single layer of a feed forward network
type Layer interface {
	fwd(x *G.Node) (*G.Node, error)
	learnables() G.Nodes
}

// convLayer implements a 2D convolutional layer without bias units.
// Inputs and outputs are in (batch, channel, height, width) layout.
type convLayer struct {
	filter *G.Node
	layer  ConvLayer
	act    *Activation
}

// newConvLayer adds the filter of a convolutional layer with
// inChannels input channels to g
func newConvLayer(g *G.ExprGraph, layer ConvLayer, inChannels int,
	init G.InitWFn, act *Activation, name string) *convLayer {
	filter := G.NewTensor(
		g,
		tensor.Float64,
		4,
		G.WithShape(layer.Filters, inChannels, layer.Kernel, layer.Kernel),
		G.WithName(name),
		G.WithInit(init),
	)

	return &convLayer{filter: filter, layer: layer, act: act}
}

// fwd adds the forward pass of the convLayer to the computational graph
func (c *convLayer) fwd(x *G.Node) (*G.Node, error) {
	pad := c.layer.Padding()
	out, err := G.Conv2d(
		x,
		c.filter,
		tensor.Shape{c.layer.Kernel, c.layer.Kernel},
		[]int{pad, pad},
		[]int{c.layer.Stride, c.layer.Stride},
		[]int{1, 1},
	)
	if err != nil {
		return nil, fmt.Errorf("fwd: could not convolve: %v", err)
	}
	return c.act.fwd(out)
}

func (c *convLayer) learnables() G.Nodes {
	return G.Nodes{c.filter}
}

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// newFCLayer adds the weights and bias of a fully connected layer to g.
// Biases are initialized to zero.
func newFCLayer(g *G.ExprGraph, in, out int, init G.InitWFn,
	act *Activation, name string) *fcLayer {
	weights := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(in, out),
		G.WithName(name+"W"),
		G.WithInit(init),
	)
	bias := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(1, out),
		G.WithName(name+"B"),
		G.WithInit(G.Zeroes()),
	)

	return &fcLayer{weights: weights, bias: bias, act: act}
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Mul(x, f.weights)
	if err != nil {
		return nil, fmt.Errorf("fwd: could not multiply weights: %v", err)
	}

	// Broadcast the bias weights to all samples along the batch
	// dimension
	x, err = G.BroadcastAdd(x, f.bias, nil, []byte{0})
	if err != nil {
		return nil, fmt.Errorf("fwd: could not add bias: %v", err)
	}
	return f.act.fwd(x)
}

func (f *fcLayer) learnables() G.Nodes {
	return G.Nodes{f.weights, f.bias}
}
