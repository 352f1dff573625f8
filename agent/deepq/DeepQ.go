// Package deepq implements the deep Q-learning agent with experience
// replay and a hard-synced target network
package deepq

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/pongdqn/agent/policy"
	"github.com/samuelfneumann/pongdqn/expreplay"
	"github.com/samuelfneumann/pongdqn/network"
	ts "github.com/samuelfneumann/pongdqn/timestep"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// DeepQ implements the deep Q-learning algorithm on stacked frames.
//
// Actions are chosen epsilon-greedily with respect to the online
// network. For each sampled transition (s, a, r, s') the online
// network's value of a in s is regressed towards
//
//	r + γ * max[Q_target(s', a')]
//
// or towards r if s' is terminal. The loss is the mean squared error
// over all batch × action slots, where every slot other than the taken
// action has the online network's own prediction as its target and so
// contributes no error.
type DeepQ struct {
	// Online network used for action selection, batch size of 1
	behaviourNet network.NeuralNet
	behaviourVM  G.VM

	// Online network whose weights are adapted, batch size of BatchSize
	trainNet network.NeuralNet
	trainVM  G.VM
	solver   G.Solver

	// targets holds the Bellman target of each transition in the
	// column of its action. mask is the one-hot encoding of the actions
	// taken, so that only those columns contribute to the loss.
	targets *G.Node
	mask    *G.Node
	lossVal G.Value
	loss    float64

	// Network that provides the update target. Its weights are copied
	// from trainNet every targetUpdateInterval steps after the
	// observation period.
	targetNet network.NeuralNet
	targetVM  G.VM

	replay   *expreplay.Memory
	policy   *policy.EGreedy
	schedule policy.EpsilonSchedule

	gamma                float64
	targetUpdateInterval int
	numActions           int
	batchSize            int
	arch                 network.Architecture

	steps   int
	epsilon float64

	// Reusable input buffers
	stateBuf     []float64
	batchBuf     []float64
	nextBatchBuf []float64
	targetBuf    []float64
	maskBuf      []float64

	logger zerolog.Logger
}

// New creates and returns a new DeepQ agent
func New(config Config, logger zerolog.Logger) (*DeepQ, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	arch := config.Network
	batchSize := config.BatchSize()
	numActions := config.NumActions()

	trainNet, err := network.NewConvNet(arch, batchSize, G.NewGraph(),
		config.InitWFn.InitWFn(config.Seed))
	if err != nil {
		return nil, fmt.Errorf("new: could not create learning network: %v",
			err)
	}

	// Behaviour network for selecting actions
	behaviourNet, err := trainNet.CloneWithBatch(1)
	if err != nil {
		return nil, fmt.Errorf("new: could not create behaviour network: %v",
			err)
	}

	// Target network starts equal to the online network
	targetNet, err := trainNet.Clone()
	if err != nil {
		return nil, fmt.Errorf("new: could not create target network: %v",
			err)
	}

	replay, err := config.ExpReplay.Create(config.Seed + 1)
	if err != nil {
		return nil, fmt.Errorf("new: could not create experience replay "+
			"buffer: %v", err)
	}

	egreedy, err := policy.NewEGreedy(numActions, config.Seed+2)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	d := &DeepQ{
		behaviourNet:         behaviourNet,
		trainNet:             trainNet,
		solver:               config.Solver,
		targetNet:            targetNet,
		replay:               replay,
		policy:               egreedy,
		schedule:             config.Epsilon,
		gamma:                config.Gamma,
		targetUpdateInterval: config.TargetUpdateInterval,
		numActions:           numActions,
		batchSize:            batchSize,
		arch:                 arch,
		epsilon:              config.Epsilon.Initial,
		stateBuf:             make([]float64, 0, arch.Features()),
		batchBuf:             make([]float64, 0, batchSize*arch.Features()),
		nextBatchBuf:         make([]float64, 0, batchSize*arch.Features()),
		targetBuf:            make([]float64, batchSize*numActions),
		maskBuf:              make([]float64, batchSize*numActions),
		logger:               logger.With().Str("component", "deepq").Logger(),
	}

	if err := d.buildLoss(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	d.behaviourVM = G.NewTapeMachine(behaviourNet.Graph())
	d.targetVM = G.NewTapeMachine(targetNet.Graph())
	d.trainVM = G.NewTapeMachine(
		trainNet.Graph(),
		G.BindDualValues(trainNet.Learnables()...),
	)

	return d, nil
}

// buildLoss adds the masked mean squared error and its gradient to the
// graph of trainNet
func (d *DeepQ) buildLoss() error {
	g := d.trainNet.Graph()

	d.targets = G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(d.batchSize, d.numActions),
		G.WithName("targets"),
		G.WithInit(G.Zeroes()),
	)
	d.mask = G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(d.batchSize, d.numActions),
		G.WithName("actionSelected"),
		G.WithInit(G.Zeroes()),
	)

	// Compute the mean squared TD error over all batch × action slots
	errs := G.Must(G.Sub(d.trainNet.Prediction(), d.targets))
	errs = G.Must(G.HadamardProd(errs, d.mask))
	cost := G.Must(G.Mean(G.Must(G.Square(errs))))
	G.Read(cost, &d.lossVal)

	if _, err := G.Grad(cost, d.trainNet.Learnables()...); err != nil {
		return fmt.Errorf("buildLoss: could not compute gradient: %v", err)
	}
	return nil
}

// SelectAction returns an action for state. Actions are uniformly
// random during the observation period and with probability epsilon
// afterwards, otherwise the action with the largest online value is
// returned.
func (d *DeepQ) SelectAction(state ts.StackedState) (int, error) {
	if err := d.checkState(state); err != nil {
		return 0, fmt.Errorf("selectAction: %v", err)
	}

	if d.steps < d.schedule.ObservePeriod || d.policy.Explore(d.epsilon) {
		return d.policy.Random(), nil
	}

	values, err := d.QValues(state)
	if err != nil {
		return 0, fmt.Errorf("selectAction: %v", err)
	}
	return policy.Greedy(values), nil
}

// QValues returns the online network's action values for state
func (d *DeepQ) QValues(state ts.StackedState) ([]float64, error) {
	if err := d.checkState(state); err != nil {
		return nil, fmt.Errorf("qValues: %v", err)
	}

	d.stateBuf = state.Flatten(d.stateBuf[:0])
	if err := d.behaviourNet.SetInput(d.stateBuf); err != nil {
		return nil, fmt.Errorf("qValues: could not set input: %v", err)
	}
	if err := d.behaviourVM.RunAll(); err != nil {
		return nil, fmt.Errorf("qValues: %v", err)
	}
	values := append([]float64(nil),
		d.behaviourNet.Output().Data().([]float64)...)
	d.behaviourVM.Reset()

	return values, nil
}

// RecordTransition stores t in the replay buffer and advances the
// exploration schedule and target network syncs by one step
func (d *DeepQ) RecordTransition(t ts.Transition) error {
	if t.Action < 0 || t.Action >= d.numActions {
		return fmt.Errorf("recordTransition: invalid action\n\t"+
			"want(0 <= action < %v)\n\thave(%v)", d.numActions, t.Action)
	}
	if err := d.checkState(t.State); err != nil {
		return fmt.Errorf("recordTransition: state: %v", err)
	}
	if !t.Terminal {
		if err := d.checkState(t.NextState); err != nil {
			return fmt.Errorf("recordTransition: next state: %v", err)
		}
	}

	d.replay.Add(t)
	d.steps++

	if d.steps <= d.schedule.ObservePeriod {
		return nil
	}

	if d.steps == d.schedule.ObservePeriod+1 {
		d.logger.Info().
			Int("step", d.steps).
			Int("replay", d.replay.Len()).
			Msg("observation period over, learning started")
	}

	d.epsilon = d.schedule.At(d.steps)

	if d.steps%d.targetUpdateInterval == 0 {
		if err := d.targetNet.Set(d.trainNet); err != nil {
			return fmt.Errorf("recordTransition: could not sync target "+
				"network: %v", err)
		}
		d.logger.Debug().Int("step", d.steps).Msg("target network synced")
	}
	return nil
}

// Learn performs a single gradient step on a sampled batch of
// transitions. Learn does nothing during the observation period or
// while the replay buffer holds fewer transitions than a batch.
func (d *DeepQ) Learn() error {
	if d.steps <= d.schedule.ObservePeriod ||
		d.replay.Len() < d.batchSize {
		return nil
	}

	batch, err := d.replay.Sample()
	if expreplay.IsEmptyBuffer(err) || expreplay.IsInsufficientSamples(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("learn: %v", err)
	}

	d.batchBuf = d.batchBuf[:0]
	d.nextBatchBuf = d.nextBatchBuf[:0]
	for _, t := range batch {
		d.batchBuf = t.State.Flatten(d.batchBuf)
		if t.Terminal {
			// Terminal targets ignore the next state's values
			d.nextBatchBuf = append(d.nextBatchBuf,
				make([]float64, d.arch.Features())...)
		} else {
			d.nextBatchBuf = t.NextState.Flatten(d.nextBatchBuf)
		}
	}

	// Predict the action values in the next states
	if err := d.targetNet.SetInput(d.nextBatchBuf); err != nil {
		return fmt.Errorf("learn: could not set target net input: %v", err)
	}
	if err := d.targetVM.RunAll(); err != nil {
		return fmt.Errorf("learn: %v", err)
	}
	fillTargets(batch, d.targetNet.Output().Data().([]float64), d.gamma,
		d.numActions, d.targetBuf, d.maskBuf)
	d.targetVM.Reset()

	err = G.Let(d.targets, tensor.New(
		tensor.WithShape(d.batchSize, d.numActions),
		tensor.WithBacking(d.targetBuf),
	))
	if err != nil {
		return fmt.Errorf("learn: could not set targets: %v", err)
	}
	err = G.Let(d.mask, tensor.New(
		tensor.WithShape(d.batchSize, d.numActions),
		tensor.WithBacking(d.maskBuf),
	))
	if err != nil {
		return fmt.Errorf("learn: could not set selected actions: %v", err)
	}
	if err := d.trainNet.SetInput(d.batchBuf); err != nil {
		return fmt.Errorf("learn: could not set trainNet input: %v", err)
	}

	// Run the learning step
	if err := d.trainVM.RunAll(); err != nil {
		return fmt.Errorf("learn: %v", err)
	}
	if loss, ok := d.lossVal.Data().(float64); ok {
		d.loss = loss
	}
	if err := d.solver.Step(d.trainNet.Model()); err != nil {
		return fmt.Errorf("learn: could not step solver: %v", err)
	}
	d.trainVM.Reset()

	return d.behaviourNet.Set(d.trainNet)
}

// checkState returns an error if state cannot be input to the
// networks
func (d *DeepQ) checkState(state ts.StackedState) error {
	depth, h, w := state.Dims()
	if depth != d.arch.Channels || h != d.arch.Height || w != d.arch.Width {
		return fmt.Errorf("invalid state dimensions\n\twant(%v×%v×%v)"+
			"\n\thave(%v×%v×%v)", d.arch.Channels, d.arch.Height,
			d.arch.Width, depth, h, w)
	}
	return nil
}

// Epsilon returns the current exploration rate
func (d *DeepQ) Epsilon() float64 {
	return d.epsilon
}

// Steps returns the number of transitions recorded
func (d *DeepQ) Steps() int {
	return d.steps
}

// ReplayLen returns the number of transitions in the replay buffer
func (d *DeepQ) ReplayLen() int {
	return d.replay.Len()
}

// Loss returns the loss of the most recent learning step
func (d *DeepQ) Loss() float64 {
	return d.loss
}

// NumActions returns the number of actions the agent chooses between
func (d *DeepQ) NumActions() int {
	return d.numActions
}

// Close releases the resources held by the agent's VMs
func (d *DeepQ) Close() error {
	for _, vm := range []G.VM{d.behaviourVM, d.trainVM, d.targetVM} {
		if err := vm.Close(); err != nil {
			return err
		}
	}
	return nil
}

// GobEncode implements the gob.GobEncoder interface. The encoded agent
// holds the number of steps elapsed, epsilon, and the online network.
// The replay buffer and solver state are not saved.
func (d *DeepQ) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(d.steps); err != nil {
		return nil, fmt.Errorf("gobEncode: could not encode steps: %v", err)
	}
	if err := enc.Encode(d.epsilon); err != nil {
		return nil, fmt.Errorf("gobEncode: could not encode epsilon: %v", err)
	}

	net, err := d.trainNet.GobEncode()
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %v", err)
	}
	if err := enc.Encode(net); err != nil {
		return nil, fmt.Errorf("gobEncode: could not encode network: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The agent must
// have been created with New using the same network architecture that
// was encoded. All networks, including the target network, are set to
// the decoded online network.
func (d *DeepQ) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	var steps int
	if err := dec.Decode(&steps); err != nil {
		return fmt.Errorf("gobDecode: could not decode steps: %v", err)
	}
	var epsilon float64
	if err := dec.Decode(&epsilon); err != nil {
		return fmt.Errorf("gobDecode: could not decode epsilon: %v", err)
	}
	var data []byte
	if err := dec.Decode(&data); err != nil {
		return fmt.Errorf("gobDecode: could not decode network: %v", err)
	}

	if d.trainNet == nil {
		return fmt.Errorf("gobDecode: agent must be created with New " +
			"before decoding")
	}
	net, err := network.Decode(data)
	if err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}
	if !net.Architecture().Equal(d.arch) {
		return fmt.Errorf("gobDecode: architecture mismatch\n\twant(%+v)"+
			"\n\thave(%+v)", d.arch, net.Architecture())
	}

	for _, dest := range []network.NeuralNet{d.trainNet, d.behaviourNet,
		d.targetNet} {
		if err := dest.Set(net); err != nil {
			return fmt.Errorf("gobDecode: %v", err)
		}
	}

	d.steps = steps
	d.epsilon = epsilon
	d.logger.Info().
		Int("step", steps).
		Float64("epsilon", epsilon).
		Msg("restored agent")
	return nil
}
