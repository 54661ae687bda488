package maze

import "github.com/samuelfneumann/mazemouse/state"

// Mouse tracks the learner's position and history within a single
// episode on a Grid
type Mouse struct {
	grid      *Grid
	position  state.Point
	previous  state.Point
	direction state.Action
	path      []state.Point
	visits    map[state.Point]int
}

// NewMouse returns a new Mouse placed at the start of grid
func NewMouse(grid *Grid) *Mouse {
	m := &Mouse{grid: grid}
	m.Reset()
	return m
}

// Reset places the Mouse back at the start of its Grid and clears its
// episode history
func (m *Mouse) Reset() {
	start := m.grid.Start()
	m.position = start
	m.previous = start
	m.direction = state.Right
	m.path = []state.Point{start}
	m.visits = map[state.Point]int{start: 1}
}

// setGrid moves the Mouse to a new Grid and resets it
func (m *Mouse) setGrid(grid *Grid) {
	m.grid = grid
	m.Reset()
}

// AttemptMove moves the Mouse one cell in the direction of a if the
// destination is a valid position. AttemptMove returns whether the
// move was made; rejected moves leave the Mouse unchanged.
func (m *Mouse) AttemptMove(a state.Action) bool {
	if !a.Valid() {
		return false
	}
	next := a.Apply(m.position)
	if !m.grid.IsValidPosition(next.X, next.Y) {
		return false
	}

	m.previous = m.position
	m.position = next
	m.direction = a
	m.path = append(m.path, next)
	m.visits[next]++
	return true
}

// X returns the column of the Mouse
func (m *Mouse) X() int {
	return m.position.X
}

// Y returns the row of the Mouse
func (m *Mouse) Y() int {
	return m.position.Y
}

// Position returns the current cell of the Mouse
func (m *Mouse) Position() state.Point {
	return m.position
}

// Previous returns the cell the Mouse occupied before its last move
func (m *Mouse) Previous() state.Point {
	return m.previous
}

// Direction returns the direction of the last successful move
func (m *Mouse) Direction() state.Action {
	return m.direction
}

// Steps returns the number of successful moves this episode
func (m *Mouse) Steps() int {
	return len(m.path) - 1
}

// Path returns a copy of the cells visited this episode, in order
func (m *Mouse) Path() []state.Point {
	path := make([]state.Point, len(m.path))
	copy(path, m.path)
	return path
}

// Visits returns the number of times p was entered this episode, the
// start counting as one visit
func (m *Mouse) Visits(p state.Point) int {
	return m.visits[p]
}

// Visited returns the set of distinct cells visited this episode
func (m *Mouse) Visited() map[state.Point]struct{} {
	visited := make(map[state.Point]struct{}, len(m.visits))
	for p := range m.visits {
		visited[p] = struct{}{}
	}
	return visited
}

// VisitedCount returns the number of distinct cells visited this
// episode
func (m *Mouse) VisitedCount() int {
	return len(m.visits)
}
