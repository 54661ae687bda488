package policy

import (
	"io"
	"log"
	"math"
	"testing"

	"github.com/samuelfneumann/mazemouse/agent/tabular/qtable"
	"github.com/samuelfneumann/mazemouse/state"
)

func TestTieBreakFairness(t *testing.T) {
	table := qtable.New()
	p := NewEGreedy(0, 11, table)
	k := state.Key{DX: 4, DY: 4}

	const trials = 8000
	counts := make([]int, state.Actions)
	for i := 0; i < trials; i++ {
		counts[p.SelectAction(k)]++
	}

	expected := float64(trials) / float64(state.Actions)
	for a, c := range counts {
		if math.Abs(float64(c)-expected) > 0.1*expected {
			t.Errorf("selectAction: action %v chosen %d times, expected "+
				"about %.0f", state.Action(a), c, expected)
		}
	}
	if !table.Has(k) {
		t.Errorf("selectAction: state should be added to the table")
	}
}

func TestTieBreakAmongMaxima(t *testing.T) {
	table := qtable.New()
	k := state.Key{DX: 1}
	table.Set(k, state.Down, 3)
	table.Set(k, state.Up, 3)
	table.Set(k, state.Left, 1)

	p := NewEGreedy(0, 5, table)
	counts := make(map[state.Action]int)
	for i := 0; i < 2000; i++ {
		counts[p.SelectAction(k)]++
	}

	if counts[state.Right] != 0 || counts[state.Left] != 0 {
		t.Errorf("selectAction: non-greedy actions selected: %v", counts)
	}
	if counts[state.Down] < 800 || counts[state.Up] < 800 {
		t.Errorf("selectAction: tied actions not chosen evenly: %v", counts)
	}
}

func TestGreedy(t *testing.T) {
	table := qtable.New()
	k := state.Key{DY: 2}
	table.Set(k, state.Left, 0.5)

	g := NewGreedy(3, table)
	for i := 0; i < 100; i++ {
		if a := g.SelectAction(k); a != state.Left {
			t.Fatalf("selectAction: want Left, have %v", a)
		}
	}
}

func TestExplorationRate(t *testing.T) {
	table := qtable.New()
	k := state.Key{}
	table.Set(k, state.Right, 10)

	p := NewEGreedy(1, 9, table)
	counts := make([]int, state.Actions)
	for i := 0; i < 4000; i++ {
		counts[p.SelectAction(k)]++
	}
	for a, c := range counts {
		if c < 800 {
			t.Errorf("selectAction: with ε = 1 action %v chosen only %d "+
				"times", state.Action(a), c)
		}
	}
}

func TestNonFiniteFallsBack(t *testing.T) {
	table := qtable.New()
	k := state.Key{DX: 2}
	table.Set(k, state.Down, math.NaN())

	p := NewEGreedy(0, 1, table)
	p.SetLogger(log.New(io.Discard, "", 0))

	seen := make(map[state.Action]bool)
	for i := 0; i < 400; i++ {
		a := p.SelectAction(k)
		if !a.Valid() {
			t.Fatalf("selectAction: invalid action %v", a)
		}
		seen[a] = true
	}
	if len(seen) != state.Actions {
		t.Errorf("selectAction: fallback should be uniform, saw %v", seen)
	}
}

func TestSetEpsilonClipped(t *testing.T) {
	p := NewEGreedy(2, 1, qtable.New())
	if p.Epsilon() != 1 {
		t.Errorf("newEGreedy: want ε = 1, have %v", p.Epsilon())
	}
	p.SetEpsilon(-0.5)
	if p.Epsilon() != 0 {
		t.Errorf("setEpsilon: want ε = 0, have %v", p.Epsilon())
	}
}
