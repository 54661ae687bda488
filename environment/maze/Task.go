package maze

import (
	"math"

	env "github.com/samuelfneumann/mazemouse/environment"
	"github.com/samuelfneumann/mazemouse/state"
	ts "github.com/samuelfneumann/mazemouse/timestep"
)

// Rewards of the Navigate task
const (
	WallReward        float64 = -10.0
	GoalReward        float64 = 100.0
	TimeStepReward    float64 = -0.1
	CloserReward      float64 = 2.0
	FartherPenalty    float64 = 1.0
	RevisitPenalty    float64 = 1.0
	MaxRevisitPenalty float64 = 5.0
)

// Navigate is the task of reaching the goal cell of a Grid. Rewards are
// shaped by the change in Manhattan distance to the goal and by
// revisiting cells, and bumping into walls is penalized.
type Navigate struct {
	grid *Grid

	stepLimit env.StepLimit
	goal      env.Ender
}

// NewNavigate returns a new Navigate task which cuts off episodes
// after cutoff steps. A cutoff of zero or less never cuts off
// episodes.
func NewNavigate(cutoff int) *Navigate {
	n := &Navigate{stepLimit: env.NewStepLimit(cutoff)}
	n.goal = env.NewFunctionEnder(n.AtGoal, ts.TerminalStateReached)
	return n
}

// Register registers the Grid the task is solved on
func (n *Navigate) Register(g *Grid) {
	n.grid = g
}

// Cutoff returns the episode step limit
func (n *Navigate) Cutoff() int {
	return n.stepLimit.Limit()
}

// GetReward returns the reward for attempting action a from before.
// Rules are applied in order: rejected moves earn WallReward, reaching
// the goal earns GoalReward, and any other move earns TimeStepReward
// adjusted by the change in distance to the goal and by how often
// after was already visited.
func (n *Navigate) GetReward(before state.Point, _ state.Action, valid bool,
	after state.Point, visits int) float64 {
	if !valid {
		return WallReward
	}
	if n.AtGoal(after) {
		return GoalReward
	}

	goal := n.grid.Goal()
	reward := TimeStepReward

	prevDistance := before.Manhattan(goal)
	newDistance := after.Manhattan(goal)
	if newDistance < prevDistance {
		reward += CloserReward
	} else if newDistance > prevDistance {
		reward -= FartherPenalty
	}

	if visits > 0 {
		reward -= math.Min(MaxRevisitPenalty, RevisitPenalty*float64(visits))
	}

	return reward
}

// AtGoal returns whether p is the goal of the registered Grid
func (n *Navigate) AtGoal(p state.Point) bool {
	return n.grid != nil && p == n.grid.Goal()
}

// End ends the episode when the goal is reached or the step limit is
// exceeded. Reaching the goal takes precedence.
func (n *Navigate) End(t *ts.TimeStep) bool {
	if n.goal.End(t) {
		return true
	}
	return n.stepLimit.End(t)
}
