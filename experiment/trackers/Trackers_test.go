package trackers

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/mazemouse/experiment/tracker"
	"github.com/samuelfneumann/mazemouse/state"
	ts "github.com/samuelfneumann/mazemouse/timestep"
)

// episode returns the TimeSteps of an episode with the given rewards,
// ending with end
func episode(rewards []float64, end ts.EndType) []ts.TimeStep {
	steps := []ts.TimeStep{ts.New(ts.First, 0, 1, state.Key{}, state.Point{}, 0)}
	for i, r := range rewards {
		step := ts.New(ts.Mid, r, 1, state.Key{}, state.Point{}, i+1)
		if i == len(rewards)-1 {
			step.SetEnd(end)
		}
		steps = append(steps, step)
	}
	return steps
}

func track(trackers []tracker.Tracker, steps []ts.TimeStep) {
	for _, step := range steps {
		for _, t := range trackers {
			t.Track(step)
		}
	}
}

func TestTrackers(t *testing.T) {
	dir := t.TempDir()
	ret := NewReturn(filepath.Join(dir, "return.bin"))
	length := NewEpisodeLength(filepath.Join(dir, "length.bin"))
	success := NewSuccess(filepath.Join(dir, "success.bin"))
	all := []tracker.Tracker{ret, length, success}

	track(all, episode([]float64{-0.1, 1.9, 100}, ts.TerminalStateReached))
	track(all, episode([]float64{-10, -10}, ts.Timeout))

	// An abandoned episode is discarded
	track(all, episode([]float64{5, 5}, ts.Unended)[:2])
	track(all, episode([]float64{1}, ts.TerminalStateReached))

	wantReturns := []float64{101.8, -20, 1}
	wantLengths := []float64{3, 2, 1}
	wantSuccess := []float64{1, 0, 1}

	checkData(t, "return", ret.Data(), wantReturns)
	checkData(t, "episodeLength", length.Data(), wantLengths)
	checkData(t, "success", success.Data(), wantSuccess)

	for _, tr := range all {
		if err := tr.Save(); err != nil {
			t.Fatal(err)
		}
	}
	loaded, err := tracker.LoadData(filepath.Join(dir, "return.bin"))
	if err != nil {
		t.Fatal(err)
	}
	checkData(t, "loadData", loaded, wantReturns)

	if _, err := tracker.LoadData(filepath.Join(dir, "missing.bin")); err == nil {
		t.Errorf("loadData: expected error for missing file")
	}
}

func TestReturnNonSequentialPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("track: expected panic on non-sequential timesteps")
		}
	}()

	r := NewReturn("")
	r.Track(ts.New(ts.First, 0, 1, state.Key{}, state.Point{}, 0))
	r.Track(ts.New(ts.Mid, 1, 1, state.Key{}, state.Point{}, 2))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{10, 20}, []float64{4, 8}, []float64{1, 0})
	if s.Episodes != 2 || s.MeanReturn != 15 || s.MeanLength != 6 {
		t.Errorf("summarize: unexpected means %+v", s)
	}
	if math.Abs(s.StdReturn-math.Sqrt(50)) > 1e-9 {
		t.Errorf("summarize: want std %v, have %v", math.Sqrt(50), s.StdReturn)
	}
	if s.SuccessRate != 0.5 || s.Successes != 1 {
		t.Errorf("summarize: want success rate 0.5, have %v", s.SuccessRate)
	}

	single := Summarize([]float64{3}, []float64{2}, []float64{1})
	if single.StdReturn != 0 || single.MeanReturn != 3 {
		t.Errorf("summarize: unexpected single episode summary %+v", single)
	}
}

func checkData(t *testing.T, name string, have, want []float64) {
	t.Helper()
	if len(have) != len(want) {
		t.Fatalf("%v: want %v, have %v", name, want, have)
	}
	for i := range want {
		if math.Abs(have[i]-want[i]) > 1e-9 {
			t.Errorf("%v: want %v, have %v", name, want, have)
			return
		}
	}
}
