package rvm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
)

// columns copies the listed columns of phi into a new matrix.
func columns(phi *mat.Dense, cols []int) *mat.Dense {
	n, _ := phi.Dims()
	out := mat.NewDense(n, len(cols), nil)
	for j, c := range cols {
		for i := 0; i < n; i++ {
			out.Set(i, j, phi.At(i, c))
		}
	}
	return out
}

// gramPlusDiag returns ZᵀWZ + diag(d) where W is diagonal with entries w.
func gramPlusDiag(z *mat.Dense, w []float64, d []float64) *mat.SymDense {
	n, m := z.Dims()
	scaled := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		s := math.Sqrt(w[i])
		for j := 0; j < m; j++ {
			scaled.Set(i, j, s*z.At(i, j))
		}
	}
	var h mat.SymDense
	h.SymOuterK(1, scaled.T())
	for j := 0; j < m; j++ {
		h.SetSym(j, j, h.At(j, j)+d[j])
	}
	return &h
}

// factorize returns the Cholesky factor of a, or the position of the first
// diagonal entry that is not a positive finite number when the
// factorization fails.
func factorize(a *mat.SymDense) (*mat.Cholesky, int, bool) {
	var chol mat.Cholesky
	if chol.Factorize(a) {
		return &chol, -1, true
	}
	n := a.SymmetricDim()
	worst, worstVal := 0, math.Inf(1)
	for j := 0; j < n; j++ {
		v := a.At(j, j)
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, j, false
		}
		if v < worstVal {
			worst, worstVal = j, v
		}
	}
	return nil, worst, false
}

// accept drops the ill-conditioning warning gonum attaches to an otherwise
// computed result.
func accept(err error) error {
	var cond mat.Condition
	if err != nil && errors.As(err, &cond) {
		return nil
	}
	return err
}

func diagonal(a mat.Symmetric) []float64 {
	n := a.SymmetricDim()
	out := make([]float64, n)
	for i := range out {
		out[i] = a.At(i, i)
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// carry maps weights of prevCols onto cols, zero for columns that are new.
func carry(prevCols []int, prev *mat.VecDense, cols []int) *mat.VecDense {
	if len(cols) == 0 {
		return nil
	}
	out := mat.NewVecDense(len(cols), nil)
	if prev == nil {
		return out
	}
	at := make(map[int]int, len(prevCols))
	for i, c := range prevCols {
		at[c] = i
	}
	for j, c := range cols {
		if i, ok := at[c]; ok {
			out.SetVec(j, prev.AtVec(i))
		}
	}
	return out
}

func sqNorm(v mat.Vector) float64 {
	return mat.Dot(v, v)
}
