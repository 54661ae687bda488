package maze

import (
	"fmt"
	"strings"

	"github.com/samuelfneumann/gomaze"
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/mazemouse/state"
)

// Cell is a single cell of a Grid
type Cell uint8

const (
	Wall Cell = iota
	Path
)

// MinSize is the smallest allowed width or height of a generated Grid
const MinSize int = 5

// Grid is a maze of wall and path cells with a start and a goal. A
// Grid is never modified after construction.
type Grid struct {
	width, height int
	cells         []Cell
	start, goal   state.Point
}

// NormalizeSize clamps a grid dimension to the nearest valid size:
// odd and at least MinSize
func NormalizeSize(n int) int {
	if n < MinSize {
		return MinSize
	}
	if n%2 == 0 {
		return n + 1
	}
	return n
}

// Generate generates a perfect maze of the given size with randomized
// backtracking over a gomaze.Grid of (width-1)/2 by (height-1)/2
// nodes. Node (r, c) lies at cell (2c+1, 2r+1) and the cell between
// two linked nodes is a passage. The start is (1, 1) and the goal is
// (width-2, height-2). Invalid sizes are adjusted with NormalizeSize.
func Generate(width, height int, rng *rand.Rand) *Grid {
	width, height = NormalizeSize(width), NormalizeSize(height)

	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height), // all Wall
		start:  state.Point{X: 1, Y: 1},
		goal:   state.Point{X: width - 2, Y: height - 2},
	}

	nodes := gomaze.NewGrid((height-1)/2, (width-1)/2)
	carve(nodes, rng)

	for _, node := range nodes.Cells() {
		p := cellOf(node)
		g.set(p, Path)
		if node.CanMoveEast() {
			g.set(state.Point{X: p.X + 1, Y: p.Y}, Path)
		}
		if node.CanMoveSouth() {
			g.set(state.Point{X: p.X, Y: p.Y + 1}, Path)
		}
	}

	return g
}

// carve links the nodes of g into a spanning tree with randomized
// backtracking from the start node
func carve(g *gomaze.Grid, rng *rand.Rand) {
	first := g.Cells()[0]
	visited := map[*gomaze.Cell]bool{first: true}
	stack := []*gomaze.Cell{first}

	for len(stack) > 0 {
		current := stack[len(stack)-1]

		unvisited := make([]*gomaze.Cell, 0, state.Directions)
		for _, neighbour := range current.Neighbours() {
			if neighbour != nil && !visited[neighbour] {
				unvisited = append(unvisited, neighbour)
			}
		}

		// Backtrack once every neighbour has been visited
		if len(unvisited) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := unvisited[rng.Intn(len(unvisited))]
		current.Link(next)
		visited[next] = true
		stack = append(stack, next)
	}
}

// cellOf returns the Grid cell of a maze node
func cellOf(node *gomaze.Cell) state.Point {
	return state.Point{X: 2*node.Col() + 1, Y: 2*node.Row() + 1}
}

// FromLayout builds a Grid from rows of text where '#' is a wall,
// '.' is a path, 'S' is the start, and 'G' is the goal. All rows must
// be of equal length and the layout must contain exactly one start and
// one goal.
func FromLayout(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("fromLayout: empty layout")
	}
	width, height := len(rows[0]), len(rows)

	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}

	starts, goals := 0, 0
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("fromLayout: row %d has length %d, want %d",
				y, len(row), width)
		}
		for x, c := range row {
			p := state.Point{X: x, Y: y}
			switch c {
			case '#':
			case '.':
				g.set(p, Path)
			case 'S':
				g.set(p, Path)
				g.start = p
				starts++
			case 'G':
				g.set(p, Path)
				g.goal = p
				goals++
			default:
				return nil, fmt.Errorf("fromLayout: illegal cell %q at (%d, %d)",
					c, x, y)
			}
		}
	}

	if starts != 1 || goals != 1 {
		return nil, fmt.Errorf("fromLayout: want exactly one start and one "+
			"goal, have %d and %d", starts, goals)
	}
	return g, nil
}

// Width returns the number of columns in the Grid
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows in the Grid
func (g *Grid) Height() int {
	return g.height
}

// Start returns the start cell
func (g *Grid) Start() state.Point {
	return g.start
}

// Goal returns the goal cell
func (g *Grid) Goal() state.Point {
	return g.goal
}

// InBounds returns whether (x, y) is inside the Grid
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// At returns the Cell at (x, y). Out of bounds cells are walls.
func (g *Grid) At(x, y int) Cell {
	if !g.InBounds(x, y) {
		return Wall
	}
	return g.cells[y*g.width+x]
}

// IsWall returns whether (x, y) is a wall. Coordinates outside the
// Grid are walls.
func (g *Grid) IsWall(x, y int) bool {
	return g.At(x, y) == Wall
}

// IsValidPosition returns whether (x, y) is inside the Grid and is not
// a wall
func (g *Grid) IsValidPosition(x, y int) bool {
	return g.InBounds(x, y) && !g.IsWall(x, y)
}

// Walls returns the wall flags around p ordered as right, down, left,
// up
func (g *Grid) Walls(p state.Point) [state.Directions]bool {
	var walls [state.Directions]bool
	for i := range walls {
		next := state.Action(i).Apply(p)
		walls[i] = g.IsWall(next.X, next.Y)
	}
	return walls
}

// PathCells returns all path cells in row-major order
func (g *Grid) PathCells() []state.Point {
	var cells []state.Point
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if !g.IsWall(x, y) {
				cells = append(cells, state.Point{X: x, Y: y})
			}
		}
	}
	return cells
}

// String returns the Grid in the format accepted by FromLayout
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			p := state.Point{X: x, Y: y}
			switch {
			case p == g.start:
				b.WriteByte('S')
			case p == g.goal:
				b.WriteByte('G')
			case g.IsWall(x, y):
				b.WriteByte('#')
			default:
				b.WriteByte('.')
			}
		}
		if y < g.height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (g *Grid) set(p state.Point, c Cell) {
	g.cells[p.Y*g.width+p.X] = c
}
