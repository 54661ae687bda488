// Package agent defines an agent interface
package agent

import (
	"github.com/samuelfneumann/mazemouse/agent/tabular/qtable"
	"github.com/samuelfneumann/mazemouse/state"
	"github.com/samuelfneumann/mazemouse/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns action values, and a
// Policy which chooses actions in each state. The Policy chooses which
// actions are taken, and the Learner uses these actions to update the
// Policy.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how action
// values are updated.
type Learner interface {
	// Learn performs a single update on a transition
	Learn(t timestep.Transition) error

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// Policy represents a policy that an agent can have.
//
// For a given agent, the Policy and Learner should share the same
// table so that any changes the Learner makes to the action values are
// reflected in the actions the Policy chooses.
type Policy interface {
	SelectAction(k state.Key) state.Action
}

// Tabular is an agent whose action values are stored in a table
type Tabular interface {
	Agent
	Table() *qtable.Table
	SetTable(*qtable.Table)
}
