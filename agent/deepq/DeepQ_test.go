package deepq

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/pongdqn/agent/policy"
	"github.com/samuelfneumann/pongdqn/expreplay"
	"github.com/samuelfneumann/pongdqn/initwfn"
	"github.com/samuelfneumann/pongdqn/network"
	"github.com/samuelfneumann/pongdqn/solver"
	ts "github.com/samuelfneumann/pongdqn/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const (
	depth  = 2
	height = 6
	width  = 6
)

func testConfig(t testing.TB) Config {
	init, err := initwfn.NewGlorotU(1.0)
	require.NoError(t, err)
	adam, err := solver.NewDefaultAdam(1e-2, 1)
	require.NoError(t, err)

	return Config{
		Network: network.Architecture{
			Channels:   depth,
			Height:     height,
			Width:      width,
			Conv:       []network.ConvLayer{{Filters: 4, Kernel: 3, Stride: 2}},
			Hidden:     []int{8},
			Activation: "relu",
			Outputs:    3,
		},
		InitWFn:   init,
		Solver:    adam,
		ExpReplay: expreplay.Config{Capacity: 50, SampleSize: 2},
		Epsilon: policy.EpsilonSchedule{
			Initial:       1.0,
			Final:         0.1,
			ObservePeriod: 2,
			DecaySteps:    10,
		},
		Gamma:                0.9,
		TargetUpdateInterval: 4,
		Seed:                 1,
	}
}

func newAgent(t testing.TB, config Config) *DeepQ {
	d, err := New(config, zerolog.Nop())
	require.NoError(t, err)
	return d
}

// frame returns a frame whose pixels depend on v and their position
func frame(v float64) *mat.Dense {
	data := make([]float64, height*width)
	for i := range data {
		data[i] = math.Mod(v+float64(i)/float64(len(data)), 1)
	}
	return mat.NewDense(height, width, data)
}

func state(v float64) ts.StackedState {
	return ts.NewStackedState(depth, frame(v))
}

// transition returns the i-th of a deterministic stream of transitions
func transition(i int) ts.Transition {
	s := state(float64(i) * 0.13)
	return ts.NewTransition(s, i%3, float64(i%5)-1, s.Push(frame(float64(i+1)*0.13)))
}

func TestTargetSyncedOnInterval(t *testing.T) {
	d := newAgent(t, testConfig(t))
	assert.Equal(t, d.trainNet.Weights(), d.targetNet.Weights())

	for i := 1; i <= 3; i++ {
		require.NoError(t, d.RecordTransition(transition(i)))
		require.NoError(t, d.Learn())
	}

	// Learning began after the observation period but no sync has
	// happened yet
	assert.Equal(t, 3, d.Steps())
	assert.NotEqual(t, d.trainNet.Weights(), d.targetNet.Weights())

	require.NoError(t, d.RecordTransition(transition(4)))
	assert.Equal(t, d.trainNet.Weights(), d.targetNet.Weights())

	require.NoError(t, d.Learn())
	assert.NotEqual(t, d.trainNet.Weights(), d.targetNet.Weights())
}

// shiftOutputBias adds shift to every output bias of net, which is the
// last learnable tensor
func shiftOutputBias(t *testing.T, net network.NeuralNet, shift float64) {
	t.Helper()
	weights := net.Weights()
	bias := weights[len(weights)-1]
	for i := range bias {
		bias[i] += shift
	}
	require.NoError(t, net.SetWeights(weights))
}

func TestLearnBootstrapsFromTargetNet(t *testing.T) {
	config := testConfig(t)
	config.Epsilon.ObservePeriod = 0
	config.TargetUpdateInterval = 1000

	// Agents with equal seeds sample the same batches and start with
	// the same weights
	base := newAgent(t, config)
	shiftedTarget := newAgent(t, config)
	shiftedOnline := newAgent(t, config)

	shiftOutputBias(t, shiftedTarget.targetNet, 100)
	shiftOutputBias(t, shiftedOnline.behaviourNet, 100)

	for _, d := range []*DeepQ{base, shiftedTarget, shiftedOnline} {
		for i := 1; i <= 2; i++ {
			require.NoError(t, d.RecordTransition(transition(i)))
		}
		require.NoError(t, d.Learn())
	}

	// Every target moves by gamma * 100, so the squared error of each
	// taken action grows by thousands
	assert.Greater(t, shiftedTarget.Loss(), base.Loss()+100)

	// The behaviour network plays no part in the targets
	assert.Equal(t, base.Loss(), shiftedOnline.Loss())
	assert.Equal(t, base.trainNet.Weights(), shiftedOnline.trainNet.Weights())
}

func TestNoSyncDuringObservation(t *testing.T) {
	config := testConfig(t)
	config.Epsilon.ObservePeriod = 8
	config.ExpReplay.SampleSize = 1
	d := newAgent(t, config)
	before := d.targetNet.Weights()

	// Weights are set directly since Learn is a no-op until step 9
	weights := d.trainNet.Weights()
	weights[0][0] += 1
	require.NoError(t, d.trainNet.SetWeights(weights))

	for i := 1; i <= 8; i++ {
		require.NoError(t, d.RecordTransition(transition(i)))
	}
	assert.Equal(t, before, d.targetNet.Weights())
}

func TestBellmanTarget(t *testing.T) {
	next := []float64{1, 7, -3}
	assert.Equal(t, 5.0, bellmanTarget(5, 0.9, true, next))
	assert.Equal(t, 5+0.9*7, bellmanTarget(5, 0.9, false, next))
	assert.Equal(t, -10.0, bellmanTarget(-10, 0.975, true, []float64{1e6}))
}

func TestFillTargetsMasksTakenActions(t *testing.T) {
	s := state(0.5)
	batch := []ts.Transition{
		ts.NewTransition(s, 2, 1, s),
		ts.NewTerminalTransition(s, 0, 100),
	}
	next := []float64{
		3, 4, 5,
		9e9, 9e9, 9e9,
	}
	targets := []float64{7, 7, 7, 7, 7, 7}
	mask := []float64{7, 7, 7, 7, 7, 7}

	fillTargets(batch, next, 0.5, 3, targets, mask)
	assert.Equal(t, []float64{0, 0, 1 + 0.5*5, 100, 0, 0}, targets)
	assert.Equal(t, []float64{0, 0, 1, 1, 0, 0}, mask)
}

func TestEpsilonAfterDecayHorizon(t *testing.T) {
	config := testConfig(t)
	d := newAgent(t, config)
	assert.Equal(t, config.Epsilon.Initial, d.Epsilon())

	sched := config.Epsilon
	for i := 1; i <= sched.ObservePeriod+sched.DecaySteps; i++ {
		require.NoError(t, d.RecordTransition(transition(i)))
	}

	want := sched.Final + (sched.Initial-sched.Final)*math.Exp(-1)
	assert.InDelta(t, want, d.Epsilon(), 1e-12)
	assert.Equal(t, sched.ObservePeriod+sched.DecaySteps, d.Steps())
	assert.Equal(t, d.Steps(), d.ReplayLen())
}

func TestRandomActionsDuringObservation(t *testing.T) {
	config := testConfig(t)
	config.Epsilon.Initial = 0
	config.Epsilon.Final = 0
	d := newAgent(t, config)

	seen := make(map[int]bool)
	for i := 0; i < 100; i++ {
		a, err := d.SelectAction(state(0.3))
		require.NoError(t, err)
		require.True(t, a >= 0 && a < 3)
		seen[a] = true
	}
	assert.Len(t, seen, 3)
}

func TestGreedyAfterObservation(t *testing.T) {
	config := testConfig(t)
	config.Epsilon.Initial = 0
	config.Epsilon.Final = 0
	d := newAgent(t, config)

	for i := 1; i <= config.Epsilon.ObservePeriod; i++ {
		require.NoError(t, d.RecordTransition(transition(i)))
	}

	for _, v := range []float64{0.1, 0.4, 0.8} {
		values, err := d.QValues(state(v))
		require.NoError(t, err)
		require.Len(t, values, 3)

		action, err := d.SelectAction(state(v))
		require.NoError(t, err)
		assert.Equal(t, policy.Greedy(values), action)
	}
}

func TestRejectsInvalidInput(t *testing.T) {
	d := newAgent(t, testConfig(t))
	s := state(0.2)

	assert.Error(t, d.RecordTransition(ts.NewTransition(s, -1, 0, s)))
	assert.Error(t, d.RecordTransition(ts.NewTransition(s, 3, 0, s)))
	assert.Error(t, d.RecordTransition(ts.NewTransition(s, 0, 0,
		ts.StackedState{})))
	assert.Error(t, d.RecordTransition(ts.NewTransition(
		ts.NewStackedState(depth+1, frame(0.2)), 0, 0, s)))
	assert.Equal(t, 0, d.Steps())
	assert.Equal(t, 0, d.ReplayLen())

	_, err := d.SelectAction(ts.StackedState{})
	assert.Error(t, err)
	_, err = d.QValues(ts.NewStackedState(depth, mat.NewDense(3, 3, nil)))
	assert.Error(t, err)

	// Terminal transitions have no next state
	assert.NoError(t, d.RecordTransition(ts.NewTerminalTransition(s, 1, -10)))
}

func TestLearnIsGuarded(t *testing.T) {
	config := testConfig(t)
	config.Epsilon.ObservePeriod = 0
	config.ExpReplay.SampleSize = 4
	d := newAgent(t, config)
	before := d.trainNet.Weights()

	// Past the observation period but fewer transitions than a batch
	for i := 1; i <= 3; i++ {
		require.NoError(t, d.RecordTransition(transition(i)))
		require.NoError(t, d.Learn())
	}
	assert.Equal(t, before, d.trainNet.Weights())

	require.NoError(t, d.RecordTransition(transition(4)))
	require.NoError(t, d.Learn())
	assert.NotEqual(t, before, d.trainNet.Weights())
	assert.Equal(t, d.trainNet.Weights(), d.behaviourNet.Weights())
	assert.Greater(t, d.Loss(), 0.0)
}

func TestLearnNoOpDuringObservation(t *testing.T) {
	d := newAgent(t, testConfig(t))
	before := d.trainNet.Weights()
	for i := 1; i <= 2; i++ {
		require.NoError(t, d.RecordTransition(transition(i)))
		require.NoError(t, d.Learn())
	}
	assert.Equal(t, before, d.trainNet.Weights())
}

func TestGobRestoresAgent(t *testing.T) {
	config := testConfig(t)
	d := newAgent(t, config)
	for i := 1; i <= 6; i++ {
		require.NoError(t, d.RecordTransition(transition(i)))
		require.NoError(t, d.Learn())
	}

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(d))

	config.Seed = 99
	restored := newAgent(t, config)
	require.NotEqual(t, d.trainNet.Weights(), restored.trainNet.Weights())
	require.NoError(t, gob.NewDecoder(&buf).Decode(restored))

	assert.Equal(t, d.Steps(), restored.Steps())
	assert.Equal(t, d.Epsilon(), restored.Epsilon())
	assert.Equal(t, d.trainNet.Weights(), restored.trainNet.Weights())
	assert.Equal(t, d.trainNet.Weights(), restored.behaviourNet.Weights())
	assert.Equal(t, d.trainNet.Weights(), restored.targetNet.Weights())
	assert.Equal(t, 0, restored.ReplayLen())

	want, err := d.QValues(state(0.7))
	require.NoError(t, err)
	got, err := restored.QValues(state(0.7))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGobRejectsOtherArchitecture(t *testing.T) {
	d := newAgent(t, testConfig(t))
	data, err := d.GobEncode()
	require.NoError(t, err)

	config := testConfig(t)
	config.Network.Hidden = []int{16}
	other := newAgent(t, config)
	assert.Error(t, other.GobDecode(data))
	assert.Error(t, other.GobDecode([]byte{1, 2, 3}))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, testConfig(t).Validate())

	c := testConfig(t)
	c.Gamma = 1.5
	assert.Error(t, c.Validate())

	c = testConfig(t)
	c.TargetUpdateInterval = 0
	assert.Error(t, c.Validate())

	c = testConfig(t)
	c.Solver = nil
	assert.Error(t, c.Validate())

	c = testConfig(t)
	c.ExpReplay.SampleSize = 100
	assert.Error(t, c.Validate())

	c = testConfig(t)
	c.Network.Outputs = 0
	assert.Error(t, c.Validate())

	_, err := New(c, zerolog.Nop())
	assert.Error(t, err)
}

func BenchmarkLearn(b *testing.B) {
	config := testConfig(b)
	config.ExpReplay.SampleSize = 8
	d := newAgent(b, config)
	for i := 1; i <= 20; i++ {
		require.NoError(b, d.RecordTransition(transition(i)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := d.Learn(); err != nil {
			b.Fatal(err)
		}
	}
}
