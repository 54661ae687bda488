package maze

import (
	"testing"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/mazemouse/state"
)

// checkPerfect ensures that the path cells of g form a spanning tree
// rooted at the start: every path cell is reachable and the number of
// passages is one less than the number of path cells.
func checkPerfect(t *testing.T, g *Grid) {
	t.Helper()

	if g.IsWall(g.Start().X, g.Start().Y) {
		t.Fatalf("start %v is a wall", g.Start())
	}
	if g.IsWall(g.Goal().X, g.Goal().Y) {
		t.Fatalf("goal %v is a wall", g.Goal())
	}

	cells := g.PathCells()
	edges := 0
	for _, p := range cells {
		// Count each passage once, looking right and down only
		if g.IsValidPosition(p.X+1, p.Y) {
			edges++
		}
		if g.IsValidPosition(p.X, p.Y+1) {
			edges++
		}
	}
	if edges != len(cells)-1 {
		t.Errorf("maze has %d path cells and %d passages, want %d passages",
			len(cells), edges, len(cells)-1)
	}

	seen := map[state.Point]bool{g.Start(): true}
	queue := []state.Point{g.Start()}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for a := state.Action(0); int(a) < state.Actions; a++ {
			next := a.Apply(p)
			if g.IsValidPosition(next.X, next.Y) && !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	if len(seen) != len(cells) {
		t.Errorf("only %d of %d path cells reachable from start", len(seen),
			len(cells))
	}
	if !seen[g.Goal()] {
		t.Errorf("goal %v not reachable from start", g.Goal())
	}
}

func TestGeneratePerfectMaze(t *testing.T) {
	sizes := [][2]int{{5, 5}, {7, 5}, {11, 11}, {21, 15}, {31, 31}}
	for seed := uint64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		for _, size := range sizes {
			g := Generate(size[0], size[1], rng)
			if g.Width() != size[0] || g.Height() != size[1] {
				t.Fatalf("generate: want size %v, have (%d, %d)", size,
					g.Width(), g.Height())
			}
			if g.Start() != (state.Point{X: 1, Y: 1}) {
				t.Errorf("generate: start should be (1, 1), have %v", g.Start())
			}
			want := state.Point{X: size[0] - 2, Y: size[1] - 2}
			if g.Goal() != want {
				t.Errorf("generate: goal should be %v, have %v", want, g.Goal())
			}
			checkPerfect(t, g)
		}
	}
}

func TestGenerateNodeLayout(t *testing.T) {
	g := Generate(21, 15, rand.New(rand.NewSource(7)))
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			switch {
			case x%2 == 1 && y%2 == 1:
				if g.IsWall(x, y) {
					t.Errorf("generate: node (%d, %d) should be open", x, y)
				}
			case x%2 == 0 && y%2 == 0:
				if !g.IsWall(x, y) {
					t.Errorf("generate: corner (%d, %d) should be a wall", x, y)
				}
			}
		}
	}
}

func TestGenerateNormalizesSize(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := Generate(2, 10, rng)
	if g.Width() != MinSize || g.Height() != 11 {
		t.Errorf("generate: want size (%d, 11), have (%d, %d)", MinSize,
			g.Width(), g.Height())
	}
	checkPerfect(t, g)
}

func TestGenerateSeeded(t *testing.T) {
	a := Generate(15, 15, rand.New(rand.NewSource(42)))
	b := Generate(15, 15, rand.New(rand.NewSource(42)))
	if a.String() != b.String() {
		t.Errorf("generate: equal seeds should produce equal mazes")
	}
}

func TestBoundsSafety(t *testing.T) {
	g := Generate(9, 7, rand.New(rand.NewSource(3)))
	outside := []state.Point{
		{X: -1, Y: 0}, {X: 0, Y: -1}, {X: 9, Y: 3}, {X: 3, Y: 7},
		{X: -100, Y: -100}, {X: 100, Y: 100},
	}
	for _, p := range outside {
		if !g.IsWall(p.X, p.Y) {
			t.Errorf("isWall(%v): out of bounds should be a wall", p)
		}
		if g.IsValidPosition(p.X, p.Y) {
			t.Errorf("isValidPosition(%v): out of bounds should be invalid", p)
		}
	}
}

func TestFromLayout(t *testing.T) {
	layout := []string{
		"#####",
		"#S..#",
		"#.#.#",
		"#..G#",
		"#####",
	}
	g, err := FromLayout(layout)
	if err != nil {
		t.Fatalf("fromLayout: %v", err)
	}

	if g.Start() != (state.Point{X: 1, Y: 1}) {
		t.Errorf("fromLayout: start %v", g.Start())
	}
	if g.Goal() != (state.Point{X: 3, Y: 3}) {
		t.Errorf("fromLayout: goal %v", g.Goal())
	}
	if !g.IsWall(2, 2) || g.IsWall(2, 1) {
		t.Errorf("fromLayout: walls not parsed")
	}

	walls := g.Walls(state.Point{X: 1, Y: 1})
	want := [state.Directions]bool{false, false, true, true}
	if walls != want {
		t.Errorf("walls: want %v, have %v", want, walls)
	}

	if g.String() != "#####\n#S..#\n#.#.#\n#..G#\n#####" {
		t.Errorf("string: unexpected layout\n%v", g)
	}
}

func TestFromLayoutErrors(t *testing.T) {
	layouts := [][]string{
		nil,
		{"#S#", "#G"},
		{"#S#", "#x#", "#G#"},
		{"#.#", "#.#", "#G#"},
		{"#S#", "#S#", "#G#"},
	}
	for _, layout := range layouts {
		if _, err := FromLayout(layout); err == nil {
			t.Errorf("fromLayout(%q): expected error", layout)
		}
	}
}
