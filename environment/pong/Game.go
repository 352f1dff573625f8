package pong

import (
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	env "github.com/samuelfneumann/pongdqn/environment"
	ts "github.com/samuelfneumann/pongdqn/timestep"
)

// Renderer draws a game state. Implementations must not modify the
// state they are given.
type Renderer interface {
	Render(State) image.Image
}

// Game is an environment.Environment in which the agent plays the left
// paddle against a Tracker. Each step is rendered into a raw frame.
type Game struct {
	sim      *Simulation
	opponent Tracker
	renderer Renderer
	actions  env.Spec
	steps    int
	logger   zerolog.Logger
}

// NewGame returns a new Game played on sim and drawn by renderer
func NewGame(sim *Simulation, renderer Renderer,
	logger zerolog.Logger) (*Game, error) {
	if sim == nil {
		return nil, fmt.Errorf("newGame: nil simulation")
	}
	if renderer == nil {
		return nil, fmt.Errorf("newGame: nil renderer")
	}

	return &Game{
		sim:      sim,
		opponent: NewTracker(sim.Geometry()),
		renderer: renderer,
		actions:  env.NewDiscreteSpec(NumActions),
		logger:   logger.With().Str("component", "pong").Logger(),
	}, nil
}

// Reset starts a new game and returns the first timestep and frame
func (g *Game) Reset() (ts.TimeStep, image.Image) {
	g.sim.Reset()
	g.steps = 0

	return ts.TimeStep{Number: 0}, g.renderer.Render(g.sim.State())
}

// Step moves the agent paddle by action for dt, lets the opponent
// respond to the same state, and returns the resulting timestep and
// rendered frame.
func (g *Game) Step(action int, dt time.Duration) (ts.TimeStep, image.Image,
	error) {
	if !g.actions.Contains(action) {
		return ts.TimeStep{}, nil, fmt.Errorf("step: action %v outside "+
			"action space", action)
	}

	oppAction := g.opponent.Act(g.sim.State())
	result, err := g.sim.Step(action, oppAction, dt)
	if err != nil {
		return ts.TimeStep{}, nil, err
	}
	g.steps++

	state := g.sim.State()
	if result.Event.Serve() {
		g.logger.Debug().
			Int("step", g.steps).
			Stringer("event", result.Event).
			Float64("score", state.Score).
			Msg("ball served")
	}

	step := ts.TimeStep{
		Number: g.steps,
		Reward: result.Reward,
		Score:  state.Score,
		Point:  result.Event.Serve(),
	}
	return step, g.renderer.Render(state), nil
}

// ActionSpec returns the discrete action specification of the game
func (g *Game) ActionSpec() env.Spec {
	return g.actions
}

// State returns the current state of the underlying Simulation
func (g *Game) State() State {
	return g.sim.State()
}
