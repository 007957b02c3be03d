package kernel

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/core/parallel"
)

// parallelRows is the row count above which kernel evaluations fan out.
const parallelRows = 512

// Rows copies the rows of m into freshly allocated slices.
func Rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(make([]float64, c), i, m)
	}
	return rows
}

// DesignMatrix returns Φ with Φ[i, j] = k(x_i, b_j) for every row x_i of X
// and every row b_j of basis. With bias, column 0 is a column of ones and the
// kernel columns are shifted right by one.
//
// X and basis must have the same number of columns.
func DesignMatrix(X, basis mat.Matrix, k Kernel, bias bool) *mat.Dense {
	return DesignMatrixRows(Rows(X), Rows(basis), k, bias)
}

// Gram returns the N×N kernel matrix of X with itself. Only the upper
// triangle is evaluated, so the result is exactly symmetric.
func Gram(X mat.Matrix, k Kernel) *mat.SymDense {
	rows := Rows(X)
	n := len(rows)
	g := mat.NewSymDense(n, nil)
	parallel.ParallelizeWithThreshold(n, parallelRows, func(start, end int) {
		for i := start; i < end; i++ {
			for j := i; j < n; j++ {
				g.SetSym(i, j, k.Evaluate(rows[i], rows[j]))
			}
		}
	})
	return g
}

// DesignMatrixRows is DesignMatrix over rows that were already extracted. It
// accepts an empty basis; with bias the result is then a single column of
// ones. It panics when xs is empty or when the result would have no columns.
func DesignMatrixRows(xs, basis [][]float64, k Kernel, bias bool) *mat.Dense {
	n, m := len(xs), len(basis)
	offset := 0
	if bias {
		offset = 1
	}

	phi := mat.NewDense(n, m+offset, nil)
	raw := phi.RawMatrix()

	// each worker owns a block of rows of the backing slice
	parallel.ParallelizeWithThreshold(n, parallelRows, func(start, end int) {
		for i := start; i < end; i++ {
			row := raw.Data[i*raw.Stride : i*raw.Stride+m+offset]
			if bias {
				row[0] = 1
			}
			for j, b := range basis {
				row[j+offset] = k.Evaluate(xs[i], b)
			}
		}
	})
	return phi
}
