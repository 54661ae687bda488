// Package expreplay implements a bounded experience replay buffer of
// maze transitions
package expreplay

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/mazemouse/timestep"
)

// Buffer implements a first-in-first-out experience replay buffer with
// uniform sampling. Once full, each added transition overwrites the
// oldest transition in the buffer.
type Buffer struct {
	transitions []timestep.Transition

	// next is the index that the next transition is written to
	next int
	size int

	batchSize int
	rng       *rand.Rand
}

// New creates and returns a new Buffer holding at most maxCapacity
// transitions and returning batchSize transitions on each call to
// Sample.
func New(maxCapacity, batchSize int, seed uint64) (*Buffer, error) {
	if maxCapacity < 1 {
		return nil, fmt.Errorf("new: maxCapacity must be > 0")
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("new: batchSize must be > 0")
	}
	if batchSize > maxCapacity {
		return nil, fmt.Errorf("new: batchSize (%d) must not exceed "+
			"maxCapacity (%d)", batchSize, maxCapacity)
	}

	return &Buffer{
		transitions: make([]timestep.Transition, maxCapacity),
		batchSize:   batchSize,
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

// Add adds a transition to the buffer, evicting the oldest transition
// if the buffer is full
func (b *Buffer) Add(t timestep.Transition) {
	b.transitions[b.next] = t
	b.next = (b.next + 1) % len(b.transitions)
	if b.size < len(b.transitions) {
		b.size++
	}
}

// Sample samples a batch of transitions uniformly at random, with
// replacement
func (b *Buffer) Sample() ([]timestep.Transition, error) {
	if b.size == 0 {
		return nil, &ExpReplayError{Op: "sample", Err: errEmptyCache}
	}
	if b.size < b.batchSize {
		return nil, &ExpReplayError{Op: "sample", Err: errInsufficientSamples}
	}

	batch := make([]timestep.Transition, b.batchSize)
	for i := range batch {
		batch[i] = b.transitions[b.rng.Intn(b.size)]
	}
	return batch, nil
}

// Capacity returns the current number of transitions in the buffer
func (b *Buffer) Capacity() int {
	return b.size
}

// MaxCapacity returns the maximum number of transitions in the buffer
func (b *Buffer) MaxCapacity() int {
	return len(b.transitions)
}

// BatchSize returns the number of transitions returned by Sample
func (b *Buffer) BatchSize() int {
	return b.batchSize
}

// Clear removes all transitions from the buffer
func (b *Buffer) Clear() {
	for i := range b.transitions {
		b.transitions[i] = timestep.Transition{}
	}
	b.next = 0
	b.size = 0
}
