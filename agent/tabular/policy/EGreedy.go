// Package policy implements policies over tabular action values
package policy

import (
	"log"
	"os"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/mazemouse/agent/tabular/qtable"
	"github.com/samuelfneumann/mazemouse/state"
	"github.com/samuelfneumann/mazemouse/utils/floatutils"
)

// EGreedy implements an ε-greedy policy over a qtable.Table. Ties
// between greedy actions are broken uniformly at random.
type EGreedy struct {
	table   *qtable.Table
	epsilon float64
	source  rand.Source // Seed for random number generation
	rng     *rand.Rand
	logger  *log.Logger
}

// NewEGreedy constructs a new EGreedy policy, where e=epsilon is the
// probability with which a random action is selected. The policy reads
// action values from table.
func NewEGreedy(e float64, seed uint64, table *qtable.Table) *EGreedy {
	source := rand.NewSource(seed)

	return &EGreedy{
		table:   table,
		epsilon: floatutils.Clip(e, 0, 1),
		source:  source,
		rng:     rand.New(source),
		logger:  log.New(os.Stderr, "policy: ", log.LstdFlags),
	}
}

// SetLogger sets the logger that anomalies are reported to
func (p *EGreedy) SetLogger(l *log.Logger) {
	p.logger = l
}

// Epsilon returns the probability of selecting a random action
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// SetEpsilon sets the probability of selecting a random action,
// clipped to [0, 1]
func (p *EGreedy) SetEpsilon(e float64) {
	p.epsilon = floatutils.Clip(e, 0, 1)
}

// Table returns the action values the policy reads
func (p *EGreedy) Table() *qtable.Table {
	return p.table
}

// SetTable sets the action values the policy reads
func (p *EGreedy) SetTable(t *qtable.Table) {
	p.table = t
}

// SelectAction selects an action from an ε-greedy policy. With
// probability ε any action is chosen uniformly; otherwise one of the
// actions of maximal value is chosen uniformly. States not yet in the
// table are added with all-zero values.
func (p *EGreedy) SelectAction(k state.Key) state.Action {
	values := p.table.Ensure(k)
	if !floatutils.AllFinite(values[:]...) {
		p.logger.Printf("selectAction: non-finite action values %v in state "+
			"%v, selecting a random action", values, k)
		return p.Random()
	}

	// Find all greedy actions
	_, greedy := floatutils.MaxSlice(values[:])

	// Calculate the ε probability of choosing any action at random
	prob := p.epsilon / float64(state.Actions)
	actionProbabilities := make([]float64, state.Actions)
	for i := range actionProbabilities {
		actionProbabilities[i] = prob
	}

	// Share the greedy probability between tied greedy actions
	greedyProb := (1.0 - p.epsilon) / float64(len(greedy))
	for _, a := range greedy {
		actionProbabilities[a] += greedyProb
	}

	// Sample an action given the action probabilities
	dist := distuv.NewCategorical(actionProbabilities, p.source)
	return state.Action(dist.Rand())
}

// Random returns an action chosen uniformly at random
func (p *EGreedy) Random() state.Action {
	return state.Action(p.rng.Intn(state.Actions))
}
