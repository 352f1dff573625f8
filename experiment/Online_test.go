package experiment

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	env "github.com/samuelfneumann/pongdqn/environment"
	"github.com/samuelfneumann/pongdqn/experiment/checkpointer"
	"github.com/samuelfneumann/pongdqn/experiment/tracker"
	ts "github.com/samuelfneumann/pongdqn/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// counterEnv renders the number of steps taken as a single gray pixel
// and rewards each step with its action. Every fifth step scores a
// point.
type counterEnv struct {
	steps   int
	score   float64
	dts     []time.Duration
	failAt  int
	actions []int
}

func (c *counterEnv) frame() image.Image {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.SetGray(0, 0, color.Gray{Y: uint8(c.steps)})
	return img
}

func (c *counterEnv) Reset() (ts.TimeStep, image.Image) {
	c.steps, c.score = 0, 0
	return ts.TimeStep{}, c.frame()
}

func (c *counterEnv) Step(action int, dt time.Duration) (ts.TimeStep,
	image.Image, error) {
	c.steps++
	if c.steps == c.failAt {
		return ts.TimeStep{}, nil, fmt.Errorf("step: failure")
	}
	c.dts = append(c.dts, dt)
	c.actions = append(c.actions, action)
	c.score += float64(action)

	step := ts.TimeStep{
		Number: c.steps,
		Reward: float64(action),
		Score:  c.score,
		Point:  c.steps%5 == 0,
	}
	return step, c.frame(), nil
}

func (c *counterEnv) ActionSpec() env.Spec {
	return env.NewDiscreteSpec(3)
}

// pixel preprocesses the single pixel frames of counterEnv
type pixel struct{}

func (pixel) Process(img image.Image) (*mat.Dense, error) {
	g := img.(*image.Gray)
	return mat.NewDense(1, 1, []float64{float64(g.Pix[0])}), nil
}

// recorder is an agent cycling through actions which records everything
// it is given
type recorder struct {
	selected    []ts.StackedState
	transitions []ts.Transition
	learns      int
}

func (r *recorder) SelectAction(state ts.StackedState) (int, error) {
	r.selected = append(r.selected, state)
	return len(r.selected) % 3, nil
}

func (r *recorder) RecordTransition(t ts.Transition) error {
	r.transitions = append(r.transitions, t)
	return nil
}

func (r *recorder) Learn() error {
	r.learns++
	return nil
}

func (r *recorder) Epsilon() float64 { return 0.5 }
func (r *recorder) Steps() int       { return len(r.transitions) }
func (r *recorder) ReplayLen() int   { return len(r.transitions) }

func flat(s ts.StackedState) []float64 {
	return s.Flatten(nil)
}

func newOnline(t *testing.T, e env.Environment, a *recorder,
	config OnlineConfig, trackers []tracker.Tracker,
	checkpointers []checkpointer.Checkpointer,
	logger zerolog.Logger) *Online {
	clock, err := NewFixedClock(60)
	require.NoError(t, err)
	o, err := NewOnline(e, a, pixel{}, clock, config, trackers,
		checkpointers, logger)
	require.NoError(t, err)
	return o
}

func TestOnlineDriverOrder(t *testing.T) {
	e := &counterEnv{}
	a := &recorder{}
	config := OnlineConfig{Steps: 7, FrameHistory: 3, LogEvery: 100}
	o := newOnline(t, e, a, config, nil, nil, zerolog.Nop())

	require.NoError(t, o.Run())
	assert.Equal(t, 7, o.Steps())
	assert.Equal(t, 7, a.learns)
	require.Len(t, a.transitions, 7)
	require.Len(t, a.selected, 7)

	// The first state repeats the frame of the initial no-op step
	assert.Equal(t, []float64{1, 1, 1}, flat(a.transitions[0].State))
	assert.Equal(t, 0, e.actions[0])

	for i, tr := range a.transitions {
		// Actions are selected on the state the transition starts in
		assert.Equal(t, flat(a.selected[i]), flat(tr.State))
		assert.Equal(t, (i+1)%3, tr.Action)
		assert.Equal(t, float64(tr.Action), tr.Reward)

		// The newest frame of the next state is the step's frame
		next := flat(tr.NextState)
		assert.Equal(t, float64(i+2), next[len(next)-1])
		assert.False(t, tr.Terminal)

		if i > 0 {
			assert.Equal(t, flat(a.transitions[i-1].NextState), flat(tr.State))
		}
	}

	for _, dt := range e.dts {
		assert.Equal(t, time.Second/60, dt)
	}
	assert.Equal(t, 6, o.LastTimeStep().Number)
}

func TestOnlineTerminalOnPoint(t *testing.T) {
	e := &counterEnv{}
	a := &recorder{}
	config := OnlineConfig{
		Steps: 10, FrameHistory: 2, LogEvery: 100, TerminalOnPoint: true,
	}
	o := newOnline(t, e, a, config, nil, nil, zerolog.Nop())
	require.NoError(t, o.Run())

	// Environment steps 5 and 10 score points, the initial no-op step
	// being environment step 1
	for i, tr := range a.transitions {
		envStep := i + 2
		assert.Equal(t, envStep%5 == 0, tr.Terminal, "transition %v", i)
		if tr.Terminal {
			assert.True(t, tr.NextState.IsZero())
		}
	}
}

func TestOnlineTracksAndCheckpoints(t *testing.T) {
	e := &counterEnv{}
	a := &recorder{}
	score, err := newScore(3)
	require.NoError(t, err)
	c := &countingCheckpointer{}

	config := OnlineConfig{Steps: 7, FrameHistory: 1, LogEvery: 100}
	o := newOnline(t, e, a, config, nil, []checkpointer.Checkpointer{c},
		zerolog.Nop())
	o.Register(score)
	require.NoError(t, o.Run())

	// Steps 0, 3, and 6 are tracked
	assert.Len(t, score.History(), 3)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, c.numbers)
}

func TestOnlineLogsOnInterval(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	config := OnlineConfig{Steps: 10, FrameHistory: 1, LogEvery: 4}
	o := newOnline(t, &counterEnv{}, &recorder{}, config, nil, nil, logger)
	require.NoError(t, o.Run())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"step":0`)
	assert.Contains(t, lines[1], `"step":4`)
	assert.Contains(t, lines[2], `"step":8`)
	assert.Contains(t, lines[0], `"epsilon":0.5`)
	assert.Contains(t, lines[0], `"component":"experiment"`)
}

func TestOnlineReturnsErrors(t *testing.T) {
	e := &counterEnv{failAt: 3}
	config := OnlineConfig{Steps: 10, FrameHistory: 2, LogEvery: 1}
	o := newOnline(t, e, &recorder{}, config, nil, nil, zerolog.Nop())
	assert.Error(t, o.Run())

	clock, err := NewFixedClock(60)
	require.NoError(t, err)
	_, err = NewOnline(nil, &recorder{}, pixel{}, clock, config, nil, nil,
		zerolog.Nop())
	assert.Error(t, err)

	config.FrameHistory = 0
	_, err = NewOnline(&counterEnv{}, &recorder{}, pixel{}, clock, config,
		nil, nil, zerolog.Nop())
	assert.Error(t, err)
}

type countingCheckpointer struct {
	numbers []int
}

func (c *countingCheckpointer) Checkpoint(t ts.TimeStep) error {
	c.numbers = append(c.numbers, t.Number)
	return nil
}

// newScore returns a Score tracker which is never saved
func newScore(every int) (*tracker.Score, error) {
	return tracker.NewScore(every, "")
}

func TestFixedClock(t *testing.T) {
	c, err := NewFixedClock(60)
	require.NoError(t, err)
	assert.Equal(t, time.Second/60, c.Tick())
	assert.Equal(t, time.Second/60, c.Tick())

	_, err = NewFixedClock(0)
	assert.Error(t, err)
}

func TestFrameClockCapsRate(t *testing.T) {
	c, err := NewFrameClock(50)
	require.NoError(t, err)

	now := time.Unix(100, 0)
	var slept []time.Duration
	c.now = func() time.Time { return now }
	c.sleep = func(d time.Duration) {
		slept = append(slept, d)
		now = now.Add(d)
	}

	assert.Equal(t, 20*time.Millisecond, c.Tick())

	// A fast step waits for the rest of the frame
	now = now.Add(5 * time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, c.Tick())
	assert.Equal(t, []time.Duration{15 * time.Millisecond}, slept)

	// A slow step reports the real time elapsed
	now = now.Add(45 * time.Millisecond)
	assert.Equal(t, 45*time.Millisecond, c.Tick())
	assert.Len(t, slept, 1)

	_, err = NewFrameClock(-1)
	assert.Error(t, err)
}
