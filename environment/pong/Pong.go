// Package pong implements a two-paddle ball game whose physics are
// normalized by elapsed time so that play is independent of the frame
// rate.
//
// The agent controls the left paddle and a Tracker controls
// the right paddle. Actions for either paddle are discrete:
//
//	Action	Meaning
//	  0		Hold
//	  1		Move up
//	  2		Move down
//
// On each step both paddles move, then the ball moves, then the ball
// is checked for collisions in a fixed order of precedence: the agent
// paddle, the agent wall, the opponent paddle, the opponent wall, and
// finally the top and bottom walls. A ball reaching either side wall
// is immediately re-served from the middle of the field and no further
// checks are made on that step.
package pong

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/pongdqn/utils/floatutils"
)

// State is the complete physical state of a game. Paddle positions are
// the y coordinate of the paddle top. Ball positions are the top-left
// corner of the ball. Directions are always -1 or +1.
type State struct {
	Paddle1Y float64
	Paddle2Y float64
	BallX    float64
	BallY    float64
	BallDirX int
	BallDirY int

	// Score is the sum of all rewards since the last Reset. It does
	// not affect the physics.
	Score float64
}

// PaddleY returns the top of the paddle on the given side
func (s State) PaddleY(side Side) float64 {
	if side == Agent {
		return s.Paddle1Y
	}
	return s.Paddle2Y
}

// Result is the outcome of a single Simulation step
type Result struct {
	Reward float64
	Event  Event
}

// Simulation implements the paddle and ball physics and the reward
// scheme of the game. A Simulation owns a single live State which is
// only changed by Step, Reset, and SetState.
type Simulation struct {
	geom    Geometry
	rewards Rewards
	state   State
	rng     *rand.Rand
}

// NewSimulation returns a new Simulation that has been Reset. The seed
// determines every serve position and the starting ball direction.
func NewSimulation(geom Geometry, rewards Rewards,
	seed uint64) (*Simulation, error) {
	if err := geom.Validate(); err != nil {
		return nil, fmt.Errorf("newSimulation: %v", err)
	}

	s := &Simulation{
		geom:    geom,
		rewards: rewards,
		rng:     rand.New(rand.NewSource(seed)),
	}
	s.Reset()

	return s, nil
}

// Geometry returns the field geometry of the Simulation
func (s *Simulation) Geometry() Geometry {
	return s.geom
}

// State returns a copy of the current state
func (s *Simulation) State() State {
	return s.state
}

// SetState replaces the current state. It returns an error if the
// state could not have been produced by Step.
func (s *Simulation) SetState(state State) error {
	travel := s.geom.PaddleTravel()
	for _, side := range []Side{Agent, Opponent} {
		y := state.PaddleY(side)
		if y < travel.Min || y > travel.Max {
			return fmt.Errorf("setState: %v paddle out of bounds\n\t"+
				"want([%v, %v])\n\thave(%v)", side, travel.Min, travel.Max, y)
		}
	}
	if !validDirection(state.BallDirX) || !validDirection(state.BallDirY) {
		return fmt.Errorf("setState: ball directions must be ±1\n\t"+
			"have(%v, %v)", state.BallDirX, state.BallDirY)
	}

	s.state = state
	return nil
}

// Reset centres both paddles, serves the ball from the middle of the
// field in a random direction, and zeroes the score
func (s *Simulation) Reset() {
	mid := s.geom.GameHeight/2 - s.geom.PaddleHeight/2
	s.state = State{
		Paddle1Y: mid,
		Paddle2Y: mid,
		BallX:    s.geom.WindowWidth / 2,
		BallY:    s.serveY(),
		BallDirX: s.randomDirection(),
		BallDirY: s.randomDirection(),
	}
}

// Step advances the game by dt. The agent paddle is moved according to
// action and the opponent paddle according to oppAction, after which
// the ball is moved and collisions are resolved. Actions outside
// [0, NumActions) are rejected.
func (s *Simulation) Step(action, oppAction int,
	dt time.Duration) (Result, error) {
	if !ValidAction(action) {
		return Result{}, fmt.Errorf("step: invalid agent action\n\t"+
			"want([0, %v))\n\thave(%v)", NumActions, action)
	}
	if !ValidAction(oppAction) {
		return Result{}, fmt.Errorf("step: invalid opponent action\n\t"+
			"want([0, %v))\n\thave(%v)", NumActions, oppAction)
	}
	if dt < 0 {
		return Result{}, fmt.Errorf("step: negative time step %v", dt)
	}

	scale := s.geom.scale(dt)
	s.state.Paddle1Y = s.movePaddle(s.state.Paddle1Y, action, scale)
	s.state.Paddle2Y = s.movePaddle(s.state.Paddle2Y, oppAction, scale)

	result := s.moveBall(scale)
	s.state.Score += result.Reward

	return result, nil
}

// movePaddle returns the new top of a paddle after taking action
func (s *Simulation) movePaddle(y float64, action int, scale float64) float64 {
	speed := s.geom.PaddleSpeed * scale
	switch action {
	case Up:
		y -= speed
	case Down:
		y += speed
	}
	return floatutils.ClipInterval(y, s.geom.PaddleTravel())
}

// moveBall moves the ball and resolves collisions in order of
// precedence. At most one of the agent events and one of the opponent
// events can fire on a step. A later event overrides the reward of an
// earlier one.
func (s *Simulation) moveBall(scale float64) Result {
	g := s.geom
	st := &s.state

	st.BallX += float64(st.BallDirX) * g.BallXSpeed * scale
	st.BallY += float64(st.BallDirY) * g.BallYSpeed * scale

	result := Result{Event: None}

	if s.hits(Agent) {
		st.BallDirX = 1
		result = Result{Reward: s.rewards.AgentHit, Event: AgentHit}
	} else if st.BallX <= 0 {
		s.serve(1)
		return Result{Reward: s.rewards.AgentMiss, Event: AgentMiss}
	}

	if s.hits(Opponent) {
		st.BallDirX = -1
		result = Result{Reward: s.rewards.OpponentHit, Event: OpponentHit}
	} else if st.BallX >= g.WindowWidth-g.BallWidth {
		s.serve(-1)
		return Result{Reward: s.rewards.OpponentMiss, Event: OpponentMiss}
	}

	if st.BallY <= 0 {
		st.BallY = 0
		st.BallDirY = 1
	} else if st.BallY >= g.GameHeight-g.BallHeight {
		st.BallY = g.GameHeight - g.BallHeight
		st.BallDirY = -1
	}

	return result
}

// hits returns whether the ball is at the paddle plane of side, moving
// towards it, and vertically overlapping the paddle
func (s *Simulation) hits(side Side) bool {
	g := s.geom
	st := s.state

	switch side {
	case Agent:
		if st.BallDirX != -1 || st.BallX > g.PaddleX(Agent)+g.PaddleWidth {
			return false
		}
	case Opponent:
		if st.BallDirX != 1 || st.BallX < g.PaddleX(Opponent)-g.BallWidth {
			return false
		}
	}

	paddleY := st.PaddleY(side)
	return st.BallY+g.BallHeight >= paddleY &&
		st.BallY <= paddleY+g.PaddleHeight
}

// serve places the ball at the horizontal centre of the field at a
// random serve band, moving horizontally in direction dirX. The
// vertical direction is kept.
func (s *Simulation) serve(dirX int) {
	s.state.BallX = s.geom.WindowWidth / 2
	s.state.BallY = s.serveY()
	s.state.BallDirX = dirX
}

// serveY returns the top of one of the evenly spaced serve bands
func (s *Simulation) serveY() float64 {
	band := s.rng.Intn(s.geom.ServeBands)
	spacing := (s.geom.GameHeight - s.geom.BallHeight) /
		float64(s.geom.ServeBands-1)
	return float64(band) * spacing
}

func (s *Simulation) randomDirection() int {
	if s.rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

// ValidAction returns whether action is a legal paddle action
func ValidAction(action int) bool {
	return action >= 0 && action < NumActions
}

func validDirection(d int) bool {
	return d == -1 || d == 1
}
