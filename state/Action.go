package state

import "fmt"

// Action is one of the four movement directions. The numbering is the
// same as the wall flag order of a Key.
type Action int

const (
	Right Action = iota
	Down
	Left
	Up
)

// Actions is the number of available actions
const Actions int = 4

// Delta returns the unit (dx, dy) displacement of the Action. Invalid
// actions have no displacement.
func (a Action) Delta() (dx, dy int) {
	switch a {
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Up:
		return 0, -1
	}
	return 0, 0
}

// Valid returns whether a is one of the four actions
func (a Action) Valid() bool {
	return a >= Right && a <= Up
}

// Apply returns the Point reached by moving one cell from p in the
// direction of a
func (a Action) Apply(p Point) Point {
	dx, dy := a.Delta()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

func (a Action) String() string {
	switch a {
	case Right:
		return "Right"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Up:
		return "Up"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}
