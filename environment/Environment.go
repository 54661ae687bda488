// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"github.com/samuelfneumann/mazemouse/state"
	ts "github.com/samuelfneumann/mazemouse/timestep"
)

// Ender determines when episodes should end
type Ender interface {
	// End returns whether the episode should end at the argument
	// TimeStep. If so, the TimeStep is modified so that its StepType
	// is timestep.Last and its EndType records why the episode ended.
	End(*ts.TimeStep) bool
}

// Task implements the reward scheme and episode termination for some
// Environment
type Task interface {
	Ender

	// GetReward returns the reward for moving from the position before
	// with the argument action. The valid parameter denotes whether
	// the move was accepted by the environment, and after is the
	// resulting position (equal to before if the move was rejected).
	// The visits parameter is the number of times after had already
	// been visited in the current episode before the move.
	GetReward(before state.Point, a state.Action, valid bool,
		after state.Point, visits int) float64

	// AtGoal returns whether p is a goal position
	AtGoal(p state.Point) bool
}

// Environment implements a simulated environment, which includes a
// Task to complete
type Environment interface {
	Task

	// Reset resets the environment to begin a new episode
	Reset() (ts.TimeStep, error)

	// Step takes one environmental step with the argument action.
	// Step returns the next TimeStep and whether the episode ended.
	Step(a state.Action) (ts.TimeStep, bool, error)

	// CurrentTimeStep returns the most recent TimeStep
	CurrentTimeStep() ts.TimeStep

	// Discount returns the discount factor of the environment
	Discount() float64
}
