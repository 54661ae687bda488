package maze

import (
	"errors"
	"testing"

	"github.com/samuelfneumann/mazemouse/state"
	ts "github.com/samuelfneumann/mazemouse/timestep"
)

func TestNewMaze(t *testing.T) {
	m, step, err := New(NewNavigate(100), 11, 9, 0.95, 7)
	if err != nil {
		t.Fatal(err)
	}
	if !step.First() || step.Number != 0 {
		t.Errorf("new: first timestep should be First with number 0: %v", step)
	}
	if m.Mouse().Position() != m.Grid().Start() {
		t.Errorf("new: mouse should start at %v", m.Grid().Start())
	}

	want := state.Encode(m.Grid().Start(), m.Grid().Goal(),
		m.Grid().Walls(m.Grid().Start()))
	if step.Observation != want {
		t.Errorf("new: observation want %v, have %v", want, step.Observation)
	}
	checkPerfect(t, m.Grid())
}

func TestStepLimitEndsEpisode(t *testing.T) {
	m, _, err := New(NewNavigate(5), 21, 21, 0.95, 1)
	if err != nil {
		t.Fatal(err)
	}

	var (
		step ts.TimeStep
		last bool
	)
	for i := 0; i < 5; i++ {
		// Bump into the outer wall so the goal is never reached
		step, last, err = m.Step(state.Up)
		if err != nil {
			t.Fatal(err)
		}
	}
	if !last || step.EndType() != ts.Timeout {
		t.Errorf("step: want timeout after 5 steps, have %v (%v)", last,
			step.EndType())
	}
	if step.Number != 5 {
		t.Errorf("step: want number 5, have %d", step.Number)
	}
}

func TestRegenerate(t *testing.T) {
	m, _, err := New(NewNavigate(0), 11, 11, 0.95, 2)
	if err != nil {
		t.Fatal(err)
	}
	m.Step(state.Right)
	m.Step(state.Down)

	step, err := m.Regenerate(15, 9)
	if err != nil {
		t.Fatal(err)
	}
	if m.Grid().Width() != 15 || m.Grid().Height() != 9 {
		t.Errorf("regenerate: unexpected size (%d, %d)", m.Grid().Width(),
			m.Grid().Height())
	}
	if m.Mouse().Steps() != 0 || !step.First() {
		t.Errorf("regenerate: mouse should be reset")
	}
	if !m.AtGoal(state.Point{X: 13, Y: 7}) {
		t.Errorf("regenerate: task should use the new goal")
	}
}

func TestObserveMalformed(t *testing.T) {
	m, _, err := New(NewNavigate(0), 7, 7, 0.95, 2)
	if err != nil {
		t.Fatal(err)
	}
	m.mouse.position = state.Point{X: 0, Y: 0}

	if _, err := m.Observe(); !errors.Is(err, ErrMalformedState) {
		t.Errorf("observe: want ErrMalformedState, have %v", err)
	}
}
