package trackers

import (
	"github.com/samuelfneumann/mazemouse/experiment/tracker"
	"github.com/samuelfneumann/mazemouse/timestep"
)

// Success tracks whether each episode reached the goal (1) or timed
// out (0)
type Success struct {
	successes []float64
	filename  string
}

// NewSuccess returns a new Success tracker which will save its data at
// the specified location filename
func NewSuccess(filename string) *Success {
	return &Success{filename: filename}
}

// Track caches whether the episode succeeded if t is the last timestep
// in the episode
func (s *Success) Track(t timestep.TimeStep) {
	if !t.Last() {
		return
	}
	if t.Terminal() {
		s.successes = append(s.successes, 1)
	} else {
		s.successes = append(s.successes, 0)
	}
}

// Data returns 1 for each completed episode that reached the goal and
// 0 for each that did not
func (s *Success) Data() []float64 {
	return append([]float64(nil), s.successes...)
}

// Save saves the data tracked by the Success Tracker to disk.
func (s *Success) Save() error {
	return tracker.SaveData(s.filename, s.successes)
}
