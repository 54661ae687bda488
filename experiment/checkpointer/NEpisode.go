package checkpointer

import (
	"fmt"

	ts "github.com/samuelfneumann/mazemouse/timestep"
)

// nEpisode implements checkpointing every N completed episodes
type nEpisode struct {
	interval int
	episodes int
	object   Saver // Object to save

	// filename returns the filename to save the object in.
	//
	// If each saved object should be in a separate file with an
	// incremented suffix (e.g. table-0001.json, table-0002.json), use
	// FilenameEnumerator. If the filename does not matter, use
	// FileTimer:
	//
	// n := NewNEpisode(10, table, FileTimer(dir, "table", ".json"))
	filename func() string
}

// NewNEpisode returns a checkpointer that checkpoints object every n
// completed episodes.
func NewNEpisode(n int, object Saver,
	filename func() string) (Checkpointer, error) {
	if n < 1 {
		return nil, fmt.Errorf("newNEpisode: n must be > 0")
	}
	return &nEpisode{
		interval: n,
		object:   object,
		filename: filename,
	}, nil
}

// Checkpoint saves the tracked object if t completes every N-th
// episode
func (n *nEpisode) Checkpoint(t ts.TimeStep) error {
	if !t.Last() {
		return nil
	}

	n.episodes++
	if n.episodes%n.interval == 0 {
		if err := n.object.Save(n.filename()); err != nil {
			return fmt.Errorf("checkpoint: %w", err)
		}
	}
	return nil
}
