package policy

import (
	"github.com/samuelfneumann/mazemouse/agent/tabular/qtable"
	"github.com/samuelfneumann/mazemouse/state"
)

// Greedy implements a greedy policy over a qtable.Table. Ties between
// greedy actions are broken uniformly at random.
type Greedy struct {
	policy *EGreedy
}

// NewGreedy returns a new Greedy policy reading action values from
// table
func NewGreedy(seed uint64, table *qtable.Table) *Greedy {
	return &Greedy{NewEGreedy(0, seed, table)}
}

// SelectAction selects a greedy action in state k
func (g *Greedy) SelectAction(k state.Key) state.Action {
	return g.policy.SelectAction(k)
}

// SetTable sets the action values the policy reads
func (g *Greedy) SetTable(t *qtable.Table) {
	g.policy.SetTable(t)
}
