// Package envconfig provides configuration structs for configuring
// maze environments. Environment configurations in this package are
// JSON serializable.
package envconfig

import (
	"fmt"

	"github.com/samuelfneumann/mazemouse/environment/maze"
	ts "github.com/samuelfneumann/mazemouse/timestep"
)

// CutoffFactor scales the area of the maze to give the default
// episode cutoff
const CutoffFactor = 4

// Config implements a specific configuration of a maze environment.
// Sizes are normalized to odd values of at least maze.MinSize.
type Config struct {
	Width  int
	Height int

	// EpisodeCutoff is the number of steps after which an episode is
	// ended with a timeout. If 0, CutoffFactor·Width·Height is used.
	EpisodeCutoff int
	Seed          uint64
}

// NewConfig returns a new environment Config
func NewConfig(width, height, episodeCutoff int, seed uint64) Config {
	return Config{
		Width:         width,
		Height:        height,
		EpisodeCutoff: episodeCutoff,
		Seed:          seed,
	}
}

// DefaultConfig returns the default environment Config
func DefaultConfig() Config {
	return NewConfig(21, 21, 0, 0)
}

// Normalize returns a copy of the Config with its sizes normalized
func (c Config) Normalize() Config {
	c.Width = maze.NormalizeSize(c.Width)
	c.Height = maze.NormalizeSize(c.Height)
	return c
}

// Cutoff returns the episode cutoff of the environment
func (c Config) Cutoff() int {
	if c.EpisodeCutoff > 0 {
		return c.EpisodeCutoff
	}
	c = c.Normalize()
	return CutoffFactor * c.Width * c.Height
}

// Validate returns an error describing whether or not the
// configuration is valid or not.
func (c Config) Validate() error {
	if c.EpisodeCutoff < 0 {
		return fmt.Errorf("validate: episode cutoff cannot be lower than 0")
	}
	return nil
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(discount float64) (*maze.Maze, ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %v", err)
	}

	task := maze.NewNavigate(c.Cutoff())
	return maze.New(task, c.Width, c.Height, discount, c.Seed)
}
