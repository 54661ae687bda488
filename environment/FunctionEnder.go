package environment

import (
	"github.com/samuelfneumann/mazemouse/state"
	ts "github.com/samuelfneumann/mazemouse/timestep"
)

// FunctionEnder ends an episode whenever a function of the agent
// position returns true.
type FunctionEnder struct {
	end     func(state.Point) bool
	endType ts.EndType
}

// NewFunctionEnder returns a new FunctionEnder which ends episodes with
// end type endType when f returns true.
func NewFunctionEnder(f func(state.Point) bool, endType ts.EndType) Ender {
	return &FunctionEnder{f, endType}
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode termination. If the episode
// should be ended, End() will modify the timestep so that its StepType
// field is timestep.Last and its EndType is the appropriate ending
// type.
func (f *FunctionEnder) End(t *ts.TimeStep) bool {
	if f.end(t.Position) {
		t.SetEnd(f.endType)
		return true
	}
	return false
}
