package trackers

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary summarizes the episodes of an experiment
type Summary struct {
	Episodes    int
	MeanReturn  float64
	StdReturn   float64
	MeanLength  float64
	StdLength   float64
	SuccessRate float64
	Successes   int
}

// Summarize summarizes per-episode returns, lengths, and successes.
// Standard deviations are 0 with fewer than two episodes.
func Summarize(returns, lengths, successes []float64) Summary {
	s := Summary{Episodes: len(returns)}
	s.MeanReturn, s.StdReturn = meanStd(returns)
	s.MeanLength, s.StdLength = meanStd(lengths)

	if len(successes) > 0 {
		total := floats.Sum(successes)
		s.Successes = int(total)
		s.SuccessRate = total / float64(len(successes))
	}
	return s
}

func meanStd(x []float64) (mean, std float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

func (s Summary) String() string {
	str := "Episodes: %d  |  Return: %.2f ± %.2f  |  Length: %.1f ± %.1f  " +
		"|  Success: %d (%.1f%%)"
	return fmt.Sprintf(str, s.Episodes, s.MeanReturn, s.StdReturn,
		s.MeanLength, s.StdLength, s.Successes, 100*s.SuccessRate)
}
