package pong

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r1"
)

const (
	// Field dimensions in pixels
	WindowWidth  float64 = 400
	WindowHeight float64 = 420 // Includes a strip below the game area
	GameHeight   float64 = 400

	// Object sizes in pixels
	PaddleWidth  float64 = 15
	PaddleHeight float64 = 60
	PaddleBuffer float64 = 15 // Gap between a paddle and its wall
	BallWidth    float64 = 20
	BallHeight   float64 = 20

	// Base speeds in pixels per frame at the target frame rate
	PaddleSpeed float64 = 5
	BallXSpeed  float64 = 3
	BallYSpeed  float64 = 3

	FPS        int = 60
	ServeBands int = 10
)

// Geometry describes the playing field, the paddles, and the ball.
// Speeds are given in pixels per frame at FPS frames per second and
// are scaled by the real elapsed time of each step.
type Geometry struct {
	FPS          int
	WindowWidth  float64
	WindowHeight float64
	GameHeight   float64

	PaddleWidth  float64
	PaddleHeight float64
	PaddleBuffer float64
	BallWidth    float64
	BallHeight   float64

	PaddleSpeed float64
	BallXSpeed  float64
	BallYSpeed  float64

	// ServeBands is the number of evenly spaced vertical positions a
	// served ball may start at
	ServeBands int
}

// DefaultGeometry returns the standard Pong field
func DefaultGeometry() Geometry {
	return Geometry{
		FPS:          FPS,
		WindowWidth:  WindowWidth,
		WindowHeight: WindowHeight,
		GameHeight:   GameHeight,
		PaddleWidth:  PaddleWidth,
		PaddleHeight: PaddleHeight,
		PaddleBuffer: PaddleBuffer,
		BallWidth:    BallWidth,
		BallHeight:   BallHeight,
		PaddleSpeed:  PaddleSpeed,
		BallXSpeed:   BallXSpeed,
		BallYSpeed:   BallYSpeed,
		ServeBands:   ServeBands,
	}
}

// Validate checks that the Geometry describes a playable field
func (g Geometry) Validate() error {
	if g.FPS <= 0 {
		return fmt.Errorf("validate: fps must be positive\n\twant(>0)"+
			"\n\thave(%v)", g.FPS)
	}
	if g.ServeBands < 2 {
		return fmt.Errorf("validate: need at least two serve bands\n\t"+
			"want(>=2)\n\thave(%v)", g.ServeBands)
	}
	if g.PaddleHeight <= 0 || g.PaddleHeight > g.GameHeight {
		return fmt.Errorf("validate: paddle height must be in (0, %v]\n\t"+
			"have(%v)", g.GameHeight, g.PaddleHeight)
	}
	if g.BallHeight <= 0 || g.BallHeight > g.GameHeight {
		return fmt.Errorf("validate: ball height must be in (0, %v]\n\t"+
			"have(%v)", g.GameHeight, g.BallHeight)
	}
	if g.GameHeight > g.WindowHeight {
		return fmt.Errorf("validate: game area taller than window\n\t"+
			"want(<=%v)\n\thave(%v)", g.WindowHeight, g.GameHeight)
	}

	// Both paddle planes must fit inside the window with room for the
	// ball between them
	inner := 2*(g.PaddleBuffer+g.PaddleWidth) + g.BallWidth
	if g.BallWidth <= 0 || g.PaddleWidth <= 0 || inner > g.WindowWidth {
		return fmt.Errorf("validate: window too narrow for paddles and "+
			"ball\n\twant(>=%v)\n\thave(%v)", inner, g.WindowWidth)
	}
	if g.PaddleSpeed < 0 || g.BallXSpeed < 0 || g.BallYSpeed < 0 {
		return fmt.Errorf("validate: speeds must be non-negative")
	}
	return nil
}

// FrameInterval returns the target time between two frames
func (g Geometry) FrameInterval() time.Duration {
	return time.Second / time.Duration(g.FPS)
}

// PaddleTravel returns the interval of valid paddle top positions
func (g Geometry) PaddleTravel() r1.Interval {
	return r1.Interval{Min: 0, Max: g.GameHeight - g.PaddleHeight}
}

// PaddleX returns the x coordinate of the left edge of a paddle
func (g Geometry) PaddleX(side Side) float64 {
	switch side {
	case Agent:
		return g.PaddleBuffer
	case Opponent:
		return g.WindowWidth - g.PaddleBuffer - g.PaddleWidth
	default:
		panic(fmt.Sprintf("paddlex: unknown side %d", side))
	}
}

// scale returns the multiplier applied to per-frame speeds for a step
// that took dt. A step of exactly one frame interval has scale 1.
func (g Geometry) scale(dt time.Duration) float64 {
	return float64(dt) / float64(g.FrameInterval())
}

// Rewards are the per-step rewards given to the agent for each
// scoring event
type Rewards struct {
	AgentHit     float64
	AgentMiss    float64
	OpponentHit  float64
	OpponentMiss float64
}

// DefaultRewards returns the standard reward scheme, which pays the
// agent mostly for returning the ball itself
func DefaultRewards() Rewards {
	return Rewards{
		AgentHit:     100.0,
		AgentMiss:    -10.0,
		OpponentHit:  0.0,
		OpponentMiss: 5.0,
	}
}
