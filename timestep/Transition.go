package timestep

import "github.com/samuelfneumann/mazemouse/state"

// Transition is a single (s, a, r, s') tuple of experience
type Transition struct {
	State     state.Key
	Action    state.Action
	Reward    float64
	NextState state.Key
	Terminal  bool
}

// NewTransition constructs the Transition between two consecutive
// TimeSteps
func NewTransition(step TimeStep, action state.Action,
	nextStep TimeStep) Transition {
	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    nextStep.Reward,
		NextState: nextStep.Observation,
		Terminal:  nextStep.Terminal(),
	}
}
