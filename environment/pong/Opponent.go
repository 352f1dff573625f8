package pong

// Tracker is the proportional controller of the opponent paddle. It
// moves the paddle centre towards the ball centre and holds when the
// two are level. It has no memory and does not learn.
type Tracker struct {
	paddleHeight float64
	ballHeight   float64
}

// NewTracker returns a Tracker for the given field
func NewTracker(geom Geometry) Tracker {
	return Tracker{
		paddleHeight: geom.PaddleHeight,
		ballHeight:   geom.BallHeight,
	}
}

// Act returns the action the opponent paddle takes in state
func (o Tracker) Act(state State) int {
	paddleCentre := state.Paddle2Y + o.paddleHeight/2
	ballCentre := state.BallY + o.ballHeight/2

	switch {
	case paddleCentre < ballCentre:
		return Down
	case paddleCentre > ballCentre:
		return Up
	default:
		return Hold
	}
}
