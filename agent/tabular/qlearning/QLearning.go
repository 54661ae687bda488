// Package qlearning implements the tabular Q-Learning algorithm
package qlearning

import (
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"github.com/samuelfneumann/mazemouse/agent"
	"github.com/samuelfneumann/mazemouse/agent/tabular/policy"
	"github.com/samuelfneumann/mazemouse/agent/tabular/qtable"
	"github.com/samuelfneumann/mazemouse/buffer/expreplay"
	"github.com/samuelfneumann/mazemouse/state"
	"github.com/samuelfneumann/mazemouse/timestep"
	"github.com/samuelfneumann/mazemouse/utils/floatutils"
)

var _ agent.Tabular = (*QLearning)(nil)

// QLearning implements the one-step tabular Q-Learning algorithm with
// an ε-greedy behaviour policy and a greedy target policy. The
// behaviour policy, target policy, and learner share a single table.
type QLearning struct {
	table     *qtable.Table
	behaviour *policy.EGreedy
	target    *policy.Greedy

	config Config
	replay *expreplay.Buffer
	logger *log.Logger
}

// New creates a new QLearning agent. Hyperparameters outside their
// valid ranges are clamped and logged.
func New(c Config, seed uint64) (*QLearning, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	logger := log.New(os.Stderr, "qlearning: ", log.LstdFlags)
	c, adjusted := c.Clamp()
	if len(adjusted) > 0 {
		logger.Printf("new: clamped out of range hyperparameters: %s",
			strings.Join(adjusted, ", "))
	}

	var replay *expreplay.Buffer
	if c.ReplayCapacity > 0 {
		var err error
		replay, err = expreplay.New(c.ReplayCapacity, c.ReplayBatch, seed)
		if err != nil {
			return nil, fmt.Errorf("new: could not create replay buffer: %w",
				err)
		}
	}

	table := qtable.New()
	behaviour := policy.NewEGreedy(c.Epsilon, seed, table)
	behaviour.SetLogger(logger)

	return &QLearning{
		table:     table,
		behaviour: behaviour,
		target:    policy.NewGreedy(seed+1, table),
		config:    c,
		replay:    replay,
		logger:    logger,
	}, nil
}

// SetLogger sets the logger that the agent reports anomalies to
func (q *QLearning) SetLogger(l *log.Logger) {
	q.logger = l
	q.behaviour.SetLogger(l)
}

// Config returns the clamped configuration of the agent
func (q *QLearning) Config() Config {
	return q.config
}

// SelectAction selects an action in state k using the behaviour policy
func (q *QLearning) SelectAction(k state.Key) state.Action {
	return q.behaviour.SelectAction(k)
}

// RandomAction selects an action uniformly at random
func (q *QLearning) RandomAction() state.Action {
	return q.behaviour.Random()
}

// TargetPolicy returns the greedy target policy of the agent
func (q *QLearning) TargetPolicy() agent.Policy {
	return q.target
}

// Update performs the Q-Learning update on the non-terminal transition
// (s, a, r, next):
//
//	Q(s, a) ← Q(s, a) + α (r + γ max Q(next) - Q(s, a))
//
// Both s and next are added to the table if not already present. If
// the reward or resulting action value is not finite, the table is left
// unchanged and an error is returned.
func (q *QLearning) Update(s state.Key, a state.Action, r float64,
	next state.Key) error {
	return q.update(s, a, r, next, false)
}

// Learn performs the Q-Learning update on a transition. Terminal
// transitions bootstrap from a value of 0. If experience replay is
// enabled, the transition is stored and a batch of stored transitions
// is also learned from.
func (q *QLearning) Learn(t timestep.Transition) error {
	if err := q.update(t.State, t.Action, t.Reward, t.NextState,
		t.Terminal); err != nil {
		return err
	}

	if q.replay == nil {
		return nil
	}
	q.replay.Add(t)
	batch, err := q.replay.Sample()
	if expreplay.IsInsufficientSamples(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("learn: %w", err)
	}

	for _, replayed := range batch {
		if err := q.update(replayed.State, replayed.Action, replayed.Reward,
			replayed.NextState, replayed.Terminal); err != nil {
			return fmt.Errorf("learn: replay: %w", err)
		}
	}
	return nil
}

// update performs the Q-Learning update on a single transition
func (q *QLearning) update(s state.Key, a state.Action, r float64,
	next state.Key, terminal bool) error {
	if !a.Valid() {
		return fmt.Errorf("update: invalid action %d", a)
	}
	if !floatutils.IsFinite(r) {
		return fmt.Errorf("update: non-finite reward %v", r)
	}

	q.table.Ensure(next)
	current := q.table.Ensure(s)[a]

	target := r
	if !terminal {
		target += q.config.Discount * q.table.Max(next)
	}
	value := current + q.config.LearningRate*(target-current)

	if !floatutils.IsFinite(value) {
		return fmt.Errorf("update: non-finite action value %v for state "+
			"%v and action %v", value, s, a)
	}
	q.table.Set(s, a, value)
	return nil
}

// TdError returns the TD error on a transition
func (q *QLearning) TdError(t timestep.Transition) float64 {
	target := t.Reward
	if !t.Terminal {
		target += q.config.Discount * q.table.Max(t.NextState)
	}
	return target - q.table.At(t.State, t.Action)
}

// EndEpisode performs cleanup at the end of an episode
func (q *QLearning) EndEpisode() {
	q.DecayExploration()
}

// DecayExploration decays the exploration rate ε ← max(minε, ε·decay)
// and clamps it to [minε, 1]
func (q *QLearning) DecayExploration() {
	e := q.behaviour.Epsilon() * q.config.EpsilonDecay
	e = math.Max(q.config.MinEpsilon, e)
	q.behaviour.SetEpsilon(math.Min(e, 1))
}

// Epsilon returns the current exploration rate
func (q *QLearning) Epsilon() float64 {
	return q.behaviour.Epsilon()
}

// SetEpsilon sets the current exploration rate
func (q *QLearning) SetEpsilon(e float64) {
	q.behaviour.SetEpsilon(e)
}

// Table returns the table of action values that the agent learns
func (q *QLearning) Table() *qtable.Table {
	return q.table
}

// SetTable sets the table of action values that the agent learns
func (q *QLearning) SetTable(t *qtable.Table) {
	q.table = t
	q.behaviour.SetTable(t)
	q.target.SetTable(t)
}

// Reset clears all learned action values and stored experience, and
// restores the initial exploration rate
func (q *QLearning) Reset() {
	q.table.Reset()
	q.behaviour.SetEpsilon(q.config.Epsilon)
	if q.replay != nil {
		q.replay.Clear()
	}
}
