package pong

// Side identifies one of the two paddles
type Side int

const (
	Agent    Side = iota // Left paddle, controlled by the learner
	Opponent             // Right paddle, controlled by the tracker
)

func (s Side) String() string {
	switch s {
	case Agent:
		return "Agent"
	case Opponent:
		return "Opponent"
	default:
		return "Unknown"
	}
}

// Paddle actions
const (
	Hold int = iota
	Up
	Down

	NumActions int = 3
)

// Event describes what happened to the ball on a single step
type Event int

const (
	None Event = iota
	AgentHit
	AgentMiss
	OpponentHit
	OpponentMiss
)

func (e Event) String() string {
	switch e {
	case AgentHit:
		return "AgentHit"
	case AgentMiss:
		return "AgentMiss"
	case OpponentHit:
		return "OpponentHit"
	case OpponentMiss:
		return "OpponentMiss"
	default:
		return "None"
	}
}

// Serve returns whether the event ends a rally and re-serves the ball
func (e Event) Serve() bool {
	return e == AgentMiss || e == OpponentMiss
}
