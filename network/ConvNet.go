package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// convNet implements a convolutional value network. The input node
// has shape (batch, channels, height, width) and the prediction node
// has shape (batch, outputs).
type convNet struct {
	g          *G.ExprGraph
	arch       Architecture
	batchSize  int
	input      *G.Node
	conv       []*convLayer
	fc         []*fcLayer
	prediction *G.Node
	predVal    G.Value

	learnables G.Nodes
	model      []G.ValueGrad
}

// NewConvNet adds a new convolutional network with the given
// architecture to g. The network operates on batches of batch
// samples. Convolutional filters and fully connected weights are
// initialized with init, biases are initialized to zero.
func NewConvNet(arch Architecture, batch int, g *G.ExprGraph,
	init G.InitWFn) (NeuralNet, error) {
	net := &convNet{}
	if err := net.build(arch, batch, g, init); err != nil {
		return nil, fmt.Errorf("newConvNet: %v", err)
	}
	return net, nil
}

// build adds the nodes of the network to g. The prediction value is
// read into c.predVal, so c must not be copied after build returns.
func (c *convNet) build(arch Architecture, batch int, g *G.ExprGraph,
	init G.InitWFn) error {
	if err := arch.Validate(); err != nil {
		return err
	}
	if batch < 1 {
		return fmt.Errorf("build: batch size must be positive\n\t"+
			"have(%v)", batch)
	}
	act, err := NewActivation(arch.Activation)
	if err != nil {
		return err
	}

	*c = convNet{
		g:         g,
		arch:      arch,
		batchSize: batch,
	}
	c.input = G.NewTensor(
		g,
		tensor.Float64,
		4,
		G.WithShape(batch, arch.Channels, arch.Height, arch.Width),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	inChannels := arch.Channels
	for i, layerCfg := range arch.Conv {
		layer := newConvLayer(g, layerCfg, inChannels, init, act,
			fmt.Sprintf("conv%d", i))
		c.conv = append(c.conv, layer)
		inChannels = layerCfg.Filters
	}

	in := arch.FlatSize()
	for i, size := range arch.Hidden {
		layer := newFCLayer(g, in, size, init, act, fmt.Sprintf("fc%d", i))
		c.fc = append(c.fc, layer)
		in = size
	}
	c.fc = append(c.fc, newFCLayer(g, in, arch.Outputs, init,
		Identity(), "out"))

	pred, err := c.fwd(c.input)
	if err != nil {
		return err
	}
	c.prediction = pred
	G.Read(c.prediction, &c.predVal)

	c.learnables = c.computeLearnables()
	c.model = c.computeModel()
	return nil
}

// Decode returns the network stored in the gob encoded data. The
// network is built in a new computational graph.
func Decode(data []byte) (NeuralNet, error) {
	net := &convNet{}
	if err := net.GobDecode(data); err != nil {
		return nil, err
	}
	return net, nil
}

// fwd adds the forward pass of the network to the computational graph
func (c *convNet) fwd(x *G.Node) (*G.Node, error) {
	var err error
	for _, layer := range c.conv {
		if x, err = layer.fwd(x); err != nil {
			return nil, err
		}
	}

	x, err = G.Reshape(x, tensor.Shape{c.batchSize, c.arch.FlatSize()})
	if err != nil {
		return nil, fmt.Errorf("fwd: could not flatten: %v", err)
	}

	for _, layer := range c.fc {
		if x, err = layer.fwd(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// Graph returns the computational graph of the network
func (c *convNet) Graph() *G.ExprGraph {
	return c.g
}

// Architecture returns the architecture of the network
func (c *convNet) Architecture() Architecture {
	return c.arch
}

// BatchSize returns the number of samples in each input batch
func (c *convNet) BatchSize() int {
	return c.batchSize
}

// Features returns the number of input features of a single sample
func (c *convNet) Features() int {
	return c.arch.Features()
}

// Outputs returns the number of outputs per sample
func (c *convNet) Outputs() int {
	return c.arch.Outputs
}

// Clone returns a copy of the network in a new computational graph
func (c *convNet) Clone() (NeuralNet, error) {
	return c.CloneWithBatch(c.batchSize)
}

// CloneWithBatch returns a copy of the network in a new computational
// graph, operating on batches of size batch
func (c *convNet) CloneWithBatch(batch int) (NeuralNet, error) {
	net, err := NewConvNet(c.arch, batch, G.NewGraph(), G.Zeroes())
	if err != nil {
		return nil, fmt.Errorf("cloneWithBatch: %v", err)
	}
	if err := net.Set(c); err != nil {
		return nil, fmt.Errorf("cloneWithBatch: %v", err)
	}
	return net, nil
}

// SetInput sets the value of the input node before running the forward
// pass. The input must hold BatchSize() samples laid out in
// (sample, channel, row, column) order.
func (c *convNet) SetInput(input []float64) error {
	if want := c.arch.Features() * c.batchSize; len(input) != want {
		return fmt.Errorf("setInput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", want, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(c.input.Shape()...),
	)
	return G.Let(c.input, inputTensor)
}

// Set sets the weights of the network to be equal to the weights of
// source. Weights are copied into the existing values, so that any VM
// already built over the graph sees the new weights.
func (c *convNet) Set(source NeuralNet) error {
	if !c.arch.Equal(source.Architecture()) {
		return fmt.Errorf("set: architectures differ\n\twant(%+v)"+
			"\n\thave(%+v)", c.arch, source.Architecture())
	}

	sourceNodes := source.Learnables()
	for i, dest := range c.learnables {
		destData, err := float64s(dest.Value())
		if err != nil {
			return fmt.Errorf("set: %v", err)
		}
		sourceData, err := float64s(sourceNodes[i].Value())
		if err != nil {
			return fmt.Errorf("set: %v", err)
		}
		copy(destData, sourceData)
	}
	return nil
}

// Weights returns a copy of the learnable parameters of the network
func (c *convNet) Weights() [][]float64 {
	weights := make([][]float64, len(c.learnables))
	for i, node := range c.learnables {
		data, err := float64s(node.Value())
		if err != nil {
			panic(fmt.Sprintf("weights: %v", err))
		}
		weights[i] = append([]float64(nil), data...)
	}
	return weights
}

// SetWeights copies weights into the learnable parameters of the
// network. The weights must be ordered as returned by Weights.
func (c *convNet) SetWeights(weights [][]float64) error {
	if len(weights) != len(c.learnables) {
		return fmt.Errorf("setWeights: invalid number of weight tensors"+
			"\n\twant(%v)\n\thave(%v)", len(c.learnables), len(weights))
	}

	for i, node := range c.learnables {
		data, err := float64s(node.Value())
		if err != nil {
			return fmt.Errorf("setWeights: %v", err)
		}
		if len(data) != len(weights[i]) {
			return fmt.Errorf("setWeights: invalid size for %v\n\twant(%v)"+
				"\n\thave(%v)", node.Name(), len(data), len(weights[i]))
		}
	}

	for i, node := range c.learnables {
		data, _ := float64s(node.Value())
		copy(data, weights[i])
	}
	return nil
}

// Learnables returns the learnable nodes of the network
func (c *convNet) Learnables() G.Nodes {
	return c.learnables
}

func (c *convNet) computeLearnables() G.Nodes {
	var learnables G.Nodes
	for _, layer := range c.conv {
		learnables = append(learnables, layer.learnables()...)
	}
	for _, layer := range c.fc {
		learnables = append(learnables, layer.learnables()...)
	}
	return learnables
}

// Model returns the learnables of the network as G.ValueGrads
func (c *convNet) Model() []G.ValueGrad {
	return c.model
}

func (c *convNet) computeModel() []G.ValueGrad {
	model := make([]G.ValueGrad, len(c.learnables))
	for i, node := range c.learnables {
		model[i] = node
	}
	return model
}

// Output returns the value of the prediction node after the last run
// of a VM over the graph
func (c *convNet) Output() G.Value {
	return c.predVal
}

// Prediction returns the prediction node of the network
func (c *convNet) Prediction() *G.Node {
	return c.prediction
}

// GobEncode implements the gob.GobEncoder interface
func (c *convNet) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(c.arch); err != nil {
		return nil, fmt.Errorf("gobEncode: could not encode architecture: %v",
			err)
	}
	if err := enc.Encode(c.batchSize); err != nil {
		return nil, fmt.Errorf("gobEncode: could not encode batch size: %v",
			err)
	}
	if err := enc.Encode(c.Weights()); err != nil {
		return nil, fmt.Errorf("gobEncode: could not encode weights: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The decoded
// network is built in a new computational graph.
func (c *convNet) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	var arch Architecture
	if err := dec.Decode(&arch); err != nil {
		return fmt.Errorf("gobDecode: could not decode architecture: %v", err)
	}
	var batchSize int
	if err := dec.Decode(&batchSize); err != nil {
		return fmt.Errorf("gobDecode: could not decode batch size: %v", err)
	}
	var weights [][]float64
	if err := dec.Decode(&weights); err != nil {
		return fmt.Errorf("gobDecode: could not decode weights: %v", err)
	}

	if err := c.build(arch, batchSize, G.NewGraph(), G.Zeroes()); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}
	if err := c.SetWeights(weights); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}
	return nil
}

// float64s returns the backing data of a float64 tensor value
func float64s(v G.Value) ([]float64, error) {
	if v == nil {
		return nil, fmt.Errorf("float64s: value not bound")
	}
	data, ok := v.Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("float64s: expected []float64 data\n\t"+
			"have(%T)", v.Data())
	}
	return data, nil
}
