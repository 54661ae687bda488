package checkpointer

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samuelfneumann/mazemouse/state"
	ts "github.com/samuelfneumann/mazemouse/timestep"
)

type recorder struct {
	saved []string
	err   error
}

func (r *recorder) Save(filename string) error {
	r.saved = append(r.saved, filename)
	return r.err
}

func lastStep() ts.TimeStep {
	step := ts.New(ts.Mid, 100, 1, state.Key{}, state.Point{}, 3)
	step.SetEnd(ts.TerminalStateReached)
	return step
}

func TestNEpisode(t *testing.T) {
	r := &recorder{}
	c, err := NewNEpisode(2, r, FilenameEnumerator(0, "ckpt", "table",
		".json"))
	if err != nil {
		t.Fatal(err)
	}

	mid := ts.New(ts.Mid, -0.1, 1, state.Key{}, state.Point{}, 1)
	for i := 0; i < 5; i++ {
		if err := c.Checkpoint(mid); err != nil {
			t.Fatal(err)
		}
		if err := c.Checkpoint(lastStep()); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{
		filepath.Join("ckpt", "table-0001.json"),
		filepath.Join("ckpt", "table-0002.json"),
	}
	if len(r.saved) != len(want) {
		t.Fatalf("checkpoint: want saves %v, have %v", want, r.saved)
	}
	for i := range want {
		if r.saved[i] != want[i] {
			t.Errorf("checkpoint: want save %v, have %v", want[i], r.saved[i])
		}
	}
}

func TestNEpisodeErrors(t *testing.T) {
	if _, err := NewNEpisode(0, &recorder{}, nil); err == nil {
		t.Errorf("newNEpisode: expected error for n = 0")
	}

	r := &recorder{err: errors.New("disk full")}
	c, err := NewNEpisode(1, r, FileTimer("ckpt", "table", ".json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Checkpoint(lastStep()); err == nil {
		t.Errorf("checkpoint: expected save error to be returned")
	}
	if !strings.HasPrefix(r.saved[0], filepath.Join("ckpt", "table-")) {
		t.Errorf("fileTimer: unexpected filename %v", r.saved[0])
	}
}
