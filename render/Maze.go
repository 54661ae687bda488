// Package render draws mazes, learned values, and learning curves to
// PNG images
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/mazemouse/environment/maze"
	"github.com/samuelfneumann/mazemouse/utils/floatutils"
	"github.com/samuelfneumann/mazemouse/utils/matutils"
)

// CellSize is the width and height of a maze cell in pixels
const CellSize = 24

var (
	wallShade  = color.RGBA{R: 40, G: 42, B: 54, A: 255}
	pathShade  = color.RGBA{R: 235, G: 235, B: 225, A: 255}
	goalShade  = color.RGBA{R: 80, G: 200, B: 120, A: 255}
	startShade = color.RGBA{R: 120, G: 160, B: 230, A: 255}
	trailShade = color.RGBA{R: 255, G: 184, B: 108, A: 255}
	mouseShade = color.RGBA{R: 220, G: 60, B: 70, A: 255}
)

// DrawMaze draws grid with the mouse and its path this episode. If
// values is not nil, it must be a height × width matrix of cell values
// (such as experiment.Online.ValueMap) which shade the path cells from
// low (blue) to high (red). Either of mouse and values may be nil.
func DrawMaze(grid *maze.Grid, mouse *maze.Mouse,
	values mat.Matrix) (image.Image, error) {
	if values != nil {
		r, c := values.Dims()
		if r != grid.Height() || c != grid.Width() {
			return nil, fmt.Errorf("drawMaze: values must be %dx%d, have "+
				"%dx%d", grid.Height(), grid.Width(), r, c)
		}
	}

	dc := gg.NewContext(grid.Width()*CellSize, grid.Height()*CellSize)
	dc.SetColor(wallShade)
	dc.Clear()

	low, high := valueRange(values)
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			if grid.IsWall(x, y) {
				continue
			}
			shade := color.Color(pathShade)
			if values != nil {
				shade = heat(values.At(y, x), low, high)
			}
			drawCell(dc, x, y, shade)
		}
	}

	start, goal := grid.Start(), grid.Goal()
	drawCell(dc, start.X, start.Y, startShade)
	drawCell(dc, goal.X, goal.Y, goalShade)

	if mouse == nil {
		return dc.Image(), nil
	}

	// Trail of the current episode
	dc.ClearPath()
	for i, p := range mouse.Path() {
		cx, cy := centre(p.X, p.Y)
		if i == 0 {
			dc.MoveTo(cx, cy)
		} else {
			dc.LineTo(cx, cy)
		}
	}
	dc.SetColor(trailShade)
	dc.SetLineWidth(CellSize / 6)
	dc.Stroke()

	cx, cy := centre(mouse.X(), mouse.Y())
	dc.DrawCircle(cx, cy, CellSize/3)
	dc.SetColor(mouseShade)
	dc.Fill()

	return dc.Image(), nil
}

// Maze draws grid, mouse, and values as with DrawMaze and saves the
// image as a PNG to filename
func Maze(grid *maze.Grid, mouse *maze.Mouse, values mat.Matrix,
	filename string) error {
	img, err := DrawMaze(grid, mouse, values)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(filename, img); err != nil {
		return fmt.Errorf("maze: could not save image: %w", err)
	}
	return nil
}

func drawCell(dc *gg.Context, x, y int, c color.Color) {
	dc.DrawRectangle(float64(x*CellSize), float64(y*CellSize), CellSize,
		CellSize)
	dc.SetColor(c)
	dc.Fill()
}

func centre(x, y int) (float64, float64) {
	return float64(x*CellSize) + CellSize/2, float64(y*CellSize) + CellSize/2
}

// valueRange returns the smallest and largest finite values in m
func valueRange(m mat.Matrix) (low, high float64) {
	if m == nil {
		return 0, 0
	}
	low, high, _ = matutils.FiniteRange(m)
	return low, high
}

// heat interpolates between blue at low and red at high. Non-finite
// values are drawn as unshaded path.
func heat(v, low, high float64) color.Color {
	if !floatutils.IsFinite(v) {
		return pathShade
	}
	t := 0.5
	if high > low {
		t = floatutils.Clip((v-low)/(high-low), 0, 1)
	}
	return color.RGBA{
		R: uint8(60 + 180*t),
		G: uint8(90 + 40*(1-math.Abs(2*t-1))),
		B: uint8(60 + 180*(1-t)),
		A: 255,
	}
}
