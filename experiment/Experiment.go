// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/samuelfneumann/mazemouse/agent/tabular/qlearning"
	"github.com/samuelfneumann/mazemouse/environment/envconfig"
	"github.com/samuelfneumann/mazemouse/experiment/tracker"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments will track environment TimeSteps with Trackers, which
// cache data to be later saved to disk. The Run() method runs episodes
// until the episode limit is reached or the experiment is paused or
// cancelled. The RunEpisode() function will run a single episode.
type Experiment interface {
	Run(ctx context.Context) error
	RunEpisode() bool // Returns whether or not the episode limit is reached

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}

// DefaultLeaderboardSize is the leaderboard size used when a Config
// does not specify one
const DefaultLeaderboardSize = 10

// Config represents a configuration of an experiment.
type Config struct {
	// MaxEpisodes is the number of episodes Run will complete before
	// returning. If 0, Run continues until paused or cancelled.
	MaxEpisodes int

	// EpisodePause is the time Run waits between episodes
	EpisodePause time.Duration

	// CheckpointEvery is the number of episodes between saves of the
	// action values to CheckpointDir. If 0, no checkpoints are saved.
	CheckpointEvery int
	CheckpointDir   string

	LeaderboardSize int
	EnvConf         envconfig.Config
	AgentConf       qlearning.Config
}

// DefaultConfig returns the default experiment Config
func DefaultConfig() Config {
	return Config{
		MaxEpisodes:     500,
		CheckpointDir:   "checkpoints",
		LeaderboardSize: DefaultLeaderboardSize,
		EnvConf:         envconfig.DefaultConfig(),
		AgentConf:       qlearning.DefaultConfig(),
	}
}

// LoadConfig loads a JSON Config from path. Fields absent from the file
// keep their default values. If the file does not exist, the default
// Config is returned.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	} else if err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not read config: %w",
			err)
	}

	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not decode config: %w",
			err)
	}
	return c, nil
}

// Save saves the Config as JSON to path
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return fmt.Errorf("save: could not encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save: could not write config: %w", err)
	}
	return nil
}

// Validate returns an error describing whether or not the
// configuration is valid or not.
func (c Config) Validate() error {
	if c.MaxEpisodes < 0 {
		return fmt.Errorf("validate: max episodes cannot be lower than 0")
	}
	if c.EpisodePause < 0 {
		return fmt.Errorf("validate: episode pause cannot be negative")
	}
	if c.CheckpointEvery < 0 {
		return fmt.Errorf("validate: checkpoint interval cannot be lower " +
			"than 0")
	}
	if c.LeaderboardSize < 0 {
		return fmt.Errorf("validate: leaderboard size cannot be lower than 0")
	}
	if err := c.EnvConf.Validate(); err != nil {
		return fmt.Errorf("validate: environment: %v", err)
	}
	if err := c.AgentConf.Validate(); err != nil {
		return fmt.Errorf("validate: agent: %v", err)
	}
	return nil
}

// CreateExp creates the Online experiment described by the Config,
// tracking data with trackers t.
func (c Config) CreateExp(t ...tracker.Tracker) (*Online, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: %v", err)
	}

	env, _, err := c.EnvConf.Create(c.AgentConf.Discount)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create environment: %v",
			err)
	}

	agent, err := qlearning.New(c.AgentConf, c.EnvConf.Seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create agent: %v", err)
	}

	return NewOnline(env, agent, c, t...)
}
