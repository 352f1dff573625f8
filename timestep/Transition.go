package timestep

// Transition is a single (s, a, r, s') experience. A terminal
// Transition has no next state and its NextState is the zero
// StackedState.
type Transition struct {
	State     StackedState
	Action    int
	Reward    float64
	NextState StackedState
	Terminal  bool
}

// NewTransition returns a non-terminal Transition
func NewTransition(state StackedState, action int, reward float64,
	next StackedState) Transition {
	return Transition{
		State:     state,
		Action:    action,
		Reward:    reward,
		NextState: next,
	}
}

// NewTerminalTransition returns a Transition that ended the episode
func NewTerminalTransition(state StackedState, action int,
	reward float64) Transition {
	return Transition{
		State:    state,
		Action:   action,
		Reward:   reward,
		Terminal: true,
	}
}
