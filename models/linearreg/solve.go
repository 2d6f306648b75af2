package linearreg

import (
	"fmt"
	"math"
)

// leastSquares solves the weighted normal equations for a design matrix with
// an implicit leading intercept column. weights may be nil for an ordinary
// fit.
func leastSquares(rows [][]float64, y []float64, weights []float64) ([]float64, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("no observations")
	}
	p := len(rows[0]) + 1 // intercept

	// Accumulate X'WX and X'Wy.
	xtx := make([][]float64, p)
	for i := range xtx {
		xtx[i] = make([]float64, p)
	}
	xty := make([]float64, p)
	for i := 0; i < n; i++ {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		xi := make([]float64, p)
		xi[0] = 1
		copy(xi[1:], rows[i])
		for a := 0; a < p; a++ {
			for b := 0; b < p; b++ {
				xtx[a][b] += w * xi[a] * xi[b]
			}
			xty[a] += w * xi[a] * y[i]
		}
	}
	return solve(xtx, xty)
}

// solve runs Gaussian elimination with partial pivoting.
func solve(a [][]float64, b []float64) ([]float64, error) {
	p := len(b)
	for col := 0; col < p; col++ {
		pivot := col
		for row := col + 1; row < p; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("design matrix is singular")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < p; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < p; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	x := make([]float64, p)
	for row := p - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < p; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}
