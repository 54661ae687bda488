package qlearning

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/mazemouse/utils/floatutils"
)

// Ranges of each hyperparameter. Values outside these ranges are
// clamped into them.
var (
	LearningRateRange = r1.Interval{Min: 0, Max: 1}
	DiscountRange     = r1.Interval{Min: 0, Max: 1}
	EpsilonRange      = r1.Interval{Min: 0, Max: 1}
	EpsilonDecayRange = r1.Interval{Min: math.SmallestNonzeroFloat64, Max: 1}
	MinEpsilonRange   = r1.Interval{Min: 0, Max: 0.2}
)

// Config represents a configuration for the QLearning agent
type Config struct {
	LearningRate float64
	Discount     float64
	Epsilon      float64 // epsilon for behaviour policy
	EpsilonDecay float64 // multiplicative decay applied per episode
	MinEpsilon   float64

	// Experience replay is disabled when ReplayCapacity is 0
	ReplayCapacity int
	ReplayBatch    int
}

// DefaultConfig returns the default QLearning configuration
func DefaultConfig() Config {
	return Config{
		LearningRate: 0.1,
		Discount:     0.95,
		Epsilon:      1.0,
		EpsilonDecay: 0.995,
		MinEpsilon:   0.01,
	}
}

// Clamp returns a copy of the Config with each hyperparameter clamped
// to its valid range, along with the names of the hyperparameters
// which were adjusted. Epsilon is raised to at least MinEpsilon.
func (c Config) Clamp() (Config, []string) {
	var adjusted []string
	clamp := func(name string, value *float64, interval r1.Interval) {
		if !floatutils.InInterval(*value, interval) {
			adjusted = append(adjusted, name)
			*value = floatutils.ClipInterval(*value, interval)
		}
	}

	clamp("LearningRate", &c.LearningRate, LearningRateRange)
	clamp("Discount", &c.Discount, DiscountRange)
	clamp("EpsilonDecay", &c.EpsilonDecay, EpsilonDecayRange)
	clamp("MinEpsilon", &c.MinEpsilon, MinEpsilonRange)
	clamp("Epsilon", &c.Epsilon, r1.Interval{
		Min: math.Max(EpsilonRange.Min, c.MinEpsilon),
		Max: EpsilonRange.Max,
	})

	return c, adjusted
}

// Validate ensures that the Config is valid. Hyperparameters outside
// their ranges are valid and are clamped on construction.
func (c Config) Validate() error {
	if c.ReplayCapacity < 0 {
		return fmt.Errorf("validate: replay capacity cannot be lower than 0")
	}
	if c.ReplayCapacity > 0 {
		if c.ReplayBatch < 1 {
			return fmt.Errorf("validate: replay batch must be > 0 when " +
				"experience replay is enabled")
		}
		if c.ReplayBatch > c.ReplayCapacity {
			return fmt.Errorf("validate: replay batch (%d) cannot exceed "+
				"replay capacity (%d)", c.ReplayBatch, c.ReplayCapacity)
		}
	}
	return nil
}
