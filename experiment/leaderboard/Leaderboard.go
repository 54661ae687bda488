// Package leaderboard keeps the best episodes of an experiment along
// with a snapshot of the action values that produced them
package leaderboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/samuelfneumann/mazemouse/agent/tabular/qtable"
)

// Entry is a single successful episode on a Leaderboard
type Entry struct {
	ID         string
	Generation int
	Steps      int
	Return     float64
	Time       time.Time

	table *qtable.Table
}

// Table returns a copy of the action values at the end of the episode.
// The zero Entry has an empty table.
func (e Entry) Table() *qtable.Table {
	if e.table == nil {
		return qtable.New()
	}
	return e.table.Clone()
}

func (e Entry) String() string {
	id := e.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%v | Generation: %d  |  Steps: %d  |  Return: %.2f",
		id, e.Generation, e.Steps, e.Return)
}

// Leaderboard keeps the N successful episodes with the fewest steps.
// Ties are broken in favour of the earlier generation.
type Leaderboard struct {
	size    int
	entries []Entry
}

// New returns a new Leaderboard holding at most size entries
func New(size int) (*Leaderboard, error) {
	if size < 1 {
		return nil, fmt.Errorf("new: size must be > 0")
	}
	return &Leaderboard{size: size}, nil
}

// Offer offers a successful episode to the Leaderboard. If the episode
// ranks among the best, a snapshot of table is stored with it and the
// new Entry is returned along with true.
func (l *Leaderboard) Offer(generation, steps int, ret float64,
	table *qtable.Table) (Entry, bool) {
	if len(l.entries) == l.size && !l.better(steps, generation,
		l.entries[len(l.entries)-1]) {
		return Entry{}, false
	}

	e := Entry{
		ID:         uuid.New().String(),
		Generation: generation,
		Steps:      steps,
		Return:     ret,
		Time:       time.Now(),
		table:      table.Clone(),
	}

	l.entries = append(l.entries, e)
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.better(l.entries[i].Steps, l.entries[i].Generation,
			l.entries[j])
	})
	if len(l.entries) > l.size {
		l.entries = l.entries[:l.size]
	}
	return e, true
}

// better returns whether an episode of the given steps and generation
// ranks above e
func (l *Leaderboard) better(steps, generation int, e Entry) bool {
	if steps != e.Steps {
		return steps < e.Steps
	}
	return generation < e.Generation
}

// Best returns the best Entry, if any
func (l *Leaderboard) Best() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[0], true
}

// Entries returns the entries of the Leaderboard from best to worst
func (l *Leaderboard) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of entries on the Leaderboard
func (l *Leaderboard) Len() int {
	return len(l.entries)
}

// Reset removes all entries from the Leaderboard
func (l *Leaderboard) Reset() {
	l.entries = nil
}
