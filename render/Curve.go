package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SmoothingWindow is the number of episodes averaged over by the
// smoothed curves of Curve
const SmoothingWindow = 10

// Curve plots the per-episode returns and lengths of an experiment,
// along with their moving averages, and saves the plot to filename.
// The image format is taken from the filename extension.
func Curve(returns, lengths []float64, filename string) error {
	if len(returns) == 0 && len(lengths) == 0 {
		return fmt.Errorf("curve: no episodes to plot")
	}
	p := plot.New()

	p.Title.Text = "Learning Progress"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Return / Steps"
	p.Add(plotter.NewGrid())

	err := plotutil.AddLines(p,
		"Return", points(returns),
		"Return (smoothed)", points(Smooth(returns, SmoothingWindow)),
		"Steps", points(lengths),
		"Steps (smoothed)", points(Smooth(lengths, SmoothingWindow)),
	)
	if err != nil {
		return fmt.Errorf("curve: could not create lines: %w", err)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, filename); err != nil {
		return fmt.Errorf("curve: could not save plot: %w", err)
	}
	return nil
}

// Smooth returns the trailing moving average of data over window
// elements. The first window-1 averages are over the available
// elements only.
func Smooth(data []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}

	smoothed := make([]float64, len(data))
	sum := 0.0
	for i, v := range data {
		sum += v
		if i >= window {
			sum -= data[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		smoothed[i] = sum / float64(n)
	}
	return smoothed
}

func points(data []float64) plotter.XYs {
	pts := make(plotter.XYs, len(data))
	for i := range data {
		pts[i].X = float64(i)
		pts[i].Y = data[i]
	}
	return pts
}
