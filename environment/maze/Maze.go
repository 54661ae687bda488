// Package maze implements a maze navigation environment on randomly
// generated perfect mazes
package maze

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"

	env "github.com/samuelfneumann/mazemouse/environment"
	"github.com/samuelfneumann/mazemouse/state"
	ts "github.com/samuelfneumann/mazemouse/timestep"
)

// ErrMalformedState is returned when the agent's current position
// cannot be encoded as a state, which happens only if the agent is
// off the Grid or inside a wall
var ErrMalformedState = errors.New("malformed state")

var _ env.Environment = (*Maze)(nil)

// Maze is an Environment in which a Mouse navigates a Grid
type Maze struct {
	env.Task
	grid  *Grid
	mouse *Mouse
	rng   *rand.Rand

	discount    float64
	currentStep ts.TimeStep
}

// New creates a new Maze on a freshly generated Grid of the given size
// and returns the Maze with its first TimeStep
func New(t env.Task, width, height int, discount float64,
	seed uint64) (*Maze, ts.TimeStep, error) {
	rng := rand.New(rand.NewSource(seed))
	return NewWithGrid(t, Generate(width, height, rng), discount, rng)
}

// NewWithGrid creates a new Maze on an existing Grid. The rng is used
// when new Grids are generated with Regenerate; if nil, a source with
// seed 0 is used.
func NewWithGrid(t env.Task, g *Grid, discount float64,
	rng *rand.Rand) (*Maze, ts.TimeStep, error) {
	if g == nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: nil grid")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}

	task, ok := t.(*Navigate)
	if ok {
		task.Register(g)
	}

	m := &Maze{
		Task:     t,
		grid:     g,
		mouse:    NewMouse(g),
		rng:      rng,
		discount: discount,
	}

	step, err := m.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: could not reset maze: %v",
			err)
	}
	return m, step, nil
}

// Grid returns the current Grid
func (m *Maze) Grid() *Grid {
	return m.grid
}

// Mouse returns the agent's state
func (m *Maze) Mouse() *Mouse {
	return m.mouse
}

// Discount returns the discount factor
func (m *Maze) Discount() float64 {
	return m.discount
}

// Observe encodes the Mouse's current position as a state.Key
func (m *Maze) Observe() (state.Key, error) {
	p := m.mouse.Position()
	if !m.grid.IsValidPosition(p.X, p.Y) {
		return state.Key{}, fmt.Errorf("observe: position %v: %w", p,
			ErrMalformedState)
	}
	return state.Encode(p, m.grid.Goal(), m.grid.Walls(p)), nil
}

// Reset moves the Mouse back to the start and returns the first
// TimeStep of a new episode
func (m *Maze) Reset() (ts.TimeStep, error) {
	m.mouse.Reset()

	key, err := m.Observe()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	m.currentStep = ts.New(ts.First, 0, m.discount, key, m.mouse.Position(), 0)
	return m.currentStep, nil
}

// Step attempts to move the Mouse with action a and returns the next
// TimeStep and whether the episode has ended. Rejected moves still
// count as a step and are penalized by the Task.
func (m *Maze) Step(a state.Action) (ts.TimeStep, bool, error) {
	before := m.mouse.Position()
	visits := m.mouse.Visits(a.Apply(before))

	valid := m.mouse.AttemptMove(a)
	after := m.mouse.Position()
	if !valid {
		visits = 0
	}

	reward := m.GetReward(before, a, valid, after, visits)

	key, err := m.Observe()
	if err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}

	nextStep := ts.New(ts.Mid, reward, m.discount, key, after,
		m.currentStep.Number+1)
	last := m.End(&nextStep)
	m.currentStep = nextStep

	return nextStep, last, nil
}

// CurrentTimeStep returns the most recent TimeStep
func (m *Maze) CurrentTimeStep() ts.TimeStep {
	return m.currentStep
}

// Regenerate replaces the Grid with a newly generated one of the given
// size and resets the Mouse to its start
func (m *Maze) Regenerate(width, height int) (ts.TimeStep, error) {
	return m.SetGrid(Generate(width, height, m.rng))
}

// SetGrid replaces the Grid and resets the Mouse to its start
func (m *Maze) SetGrid(g *Grid) (ts.TimeStep, error) {
	if g == nil {
		return ts.TimeStep{}, fmt.Errorf("setGrid: nil grid")
	}
	m.grid = g
	if task, ok := m.Task.(*Navigate); ok {
		task.Register(g)
	}
	m.mouse.setGrid(g)
	return m.Reset()
}

func (m *Maze) String() string {
	str := "Maze | At: %v  |  Goal: %v  |  Bounds: (%d, %d)"
	return fmt.Sprintf(str, m.mouse.Position(), m.grid.Goal(), m.grid.Width(),
		m.grid.Height())
}
