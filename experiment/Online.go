package experiment

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/pongdqn/agent"
	env "github.com/samuelfneumann/pongdqn/environment"
	"github.com/samuelfneumann/pongdqn/experiment/checkpointer"
	"github.com/samuelfneumann/pongdqn/experiment/tracker"
	"github.com/samuelfneumann/pongdqn/preprocess"
	ts "github.com/samuelfneumann/pongdqn/timestep"
	"github.com/samuelfneumann/pongdqn/utils/progressbar"
)

var _ Experiment = (*Online)(nil)

// OnlineConfig configures an Online experiment
type OnlineConfig struct {
	Steps        int // Number of training steps
	FrameHistory int // Number of stacked frames in a state
	LogEvery     int // Steps between progress log lines

	// TerminalOnPoint marks the transition of each scored point as
	// terminal, so that its target is the reward alone
	TerminalOnPoint bool
}

// Validate checks that an OnlineConfig is usable
func (c OnlineConfig) Validate() error {
	if c.Steps < 0 {
		return fmt.Errorf("validate: steps must be >= 0\n\thave(%v)", c.Steps)
	}
	if c.FrameHistory < 1 {
		return fmt.Errorf("validate: frame history must be >= 1\n\thave(%v)",
			c.FrameHistory)
	}
	if c.LogEvery < 1 {
		return fmt.Errorf("validate: log interval must be >= 1\n\thave(%v)",
			c.LogEvery)
	}
	return nil
}

// Online is an Experiment that trains an agent online on a single
// continuing game. Every step the agent selects an action on the
// current stacked state, the environment is stepped, the new frame is
// preprocessed and pushed onto the stack, and the agent records the
// transition and learns.
//
// TimeSteps sent to Trackers and Checkpointers are numbered by
// training step, starting at 0.
type Online struct {
	env          env.Environment
	agent        agent.Agent
	preprocessor preprocess.Preprocessor
	clock        Clock
	config       OnlineConfig

	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer
	progress      *progressbar.ManualProgressBar

	state        ts.StackedState
	currentSteps int
	lastStep     ts.TimeStep

	logger zerolog.Logger
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The trackers determine which data is
// saved and the checkpointers determine when the agent is saved.
func NewOnline(e env.Environment, a agent.Agent, p preprocess.Preprocessor,
	clock Clock, config OnlineConfig, trackers []tracker.Tracker,
	checkpointers []checkpointer.Checkpointer,
	logger zerolog.Logger) (*Online, error) {
	if e == nil || a == nil || p == nil || clock == nil {
		return nil, fmt.Errorf("newOnline: nil environment, agent, " +
			"preprocessor, or clock")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newOnline: %v", err)
	}

	return &Online{
		env:           e,
		agent:         a,
		preprocessor:  p,
		clock:         clock,
		config:        config,
		trackers:      trackers,
		checkpointers: checkpointers,
		logger:        logger.With().Str("component", "experiment").Logger(),
	}, nil
}

// SetProgressBar sets a progress bar which is updated every step
func (o *Online) SetProgressBar(p *progressbar.ManualProgressBar) {
	o.progress = p
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run() error {
	if err := o.start(); err != nil {
		return err
	}

	for o.currentSteps < o.config.Steps {
		if err := o.step(); err != nil {
			return err
		}
	}
	return nil
}

// Steps returns the number of training steps run
func (o *Online) Steps() int {
	return o.currentSteps
}

// LastTimeStep returns the most recent TimeStep of the experiment
func (o *Online) LastTimeStep() ts.TimeStep {
	return o.lastStep
}

// start resets the environment and builds the first stacked state by
// repeating the frame of an initial no-op step
func (o *Online) start() error {
	o.env.Reset()

	_, frame, err := o.env.Step(0, o.clock.Tick())
	if err != nil {
		return fmt.Errorf("start: %v", err)
	}
	processed, err := o.preprocessor.Process(frame)
	if err != nil {
		return fmt.Errorf("start: %v", err)
	}

	o.state = ts.NewStackedState(o.config.FrameHistory, processed)
	o.currentSteps = 0
	return nil
}

// step runs a single training step
func (o *Online) step() error {
	action, err := o.agent.SelectAction(o.state)
	if err != nil {
		return fmt.Errorf("step: %v", err)
	}

	step, frame, err := o.env.Step(action, o.clock.Tick())
	if err != nil {
		return fmt.Errorf("step: %v", err)
	}
	step.Number = o.currentSteps

	processed, err := o.preprocessor.Process(frame)
	if err != nil {
		return fmt.Errorf("step: %v", err)
	}
	next := o.state.Push(processed)

	var transition ts.Transition
	if o.config.TerminalOnPoint && step.Point {
		transition = ts.NewTerminalTransition(o.state, action, step.Reward)
	} else {
		transition = ts.NewTransition(o.state, action, step.Reward, next)
	}
	if err := o.agent.RecordTransition(transition); err != nil {
		return fmt.Errorf("step: %v", err)
	}
	if err := o.agent.Learn(); err != nil {
		return fmt.Errorf("step: %v", err)
	}

	o.track(step)
	if err := o.checkpoint(step); err != nil {
		return fmt.Errorf("step: %v", err)
	}

	if step.Number%o.config.LogEvery == 0 {
		o.log(step, action)
	}
	if o.progress != nil {
		o.progress.Increment()
		o.progress.Display()
	}

	o.state = next
	o.lastStep = step
	o.currentSteps++
	return nil
}

// log logs the progress of the experiment at step
func (o *Online) log(step ts.TimeStep, action int) {
	event := o.logger.Info().
		Int("step", step.Number).
		Int("action", action).
		Float64("reward", step.Reward).
		Float64("score", step.Score)

	if m, ok := o.agent.(agent.Monitored); ok {
		event = event.
			Float64("epsilon", m.Epsilon()).
			Int("replay", m.ReplayLen())
	}
	event.Msg("training")
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return err
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each
// Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tracker := range o.trackers {
		tracker.Track(t)
	}
}

// checkpoint checkpoints the agent with each Checkpointer
func (o *Online) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return err
		}
	}
	return nil
}
