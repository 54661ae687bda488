// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/mazemouse/utils/floatutils"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// FiniteRange returns the smallest and largest finite values in X. If
// X has no finite values, ok is false.
func FiniteRange(X mat.Matrix) (low, high float64, ok bool) {
	low, high = math.Inf(1), math.Inf(-1)
	r, c := X.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if !floatutils.IsFinite(v) {
				continue
			}
			low = math.Min(low, v)
			high = math.Max(high, v)
		}
	}
	if low > high {
		return 0, 0, false
	}
	return low, high, true
}

// FormatValueMap formats a matrix of per-cell values as a grid, with
// each value printed to the given precision in a fixed width column.
// Non-finite cells, such as walls, are drawn as a column of '#'.
func FormatValueMap(X mat.Matrix, precision int) string {
	r, c := X.Dims()
	cells := make([][]string, r)
	width := 1
	for i := 0; i < r; i++ {
		cells[i] = make([]string, c)
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if floatutils.IsFinite(v) {
				cells[i][j] = fmt.Sprintf("%.*f", precision, v)
				if len(cells[i][j]) > width {
					width = len(cells[i][j])
				}
			}
		}
	}

	var b strings.Builder
	for i, row := range cells {
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			if cell == "" {
				b.WriteString(strings.Repeat("#", width))
			} else {
				fmt.Fprintf(&b, "%*s", width, cell)
			}
		}
		if i < len(cells)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
