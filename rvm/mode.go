package rvm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
)

// minStep bounds step halving in the Newton line search.
const minStep = 1.0 / (1 << 30)

// mode is the maximum of the penalized log-likelihood for fixed α.
type mode struct {
	mu    *mat.VecDense
	y     *mat.VecDense
	steps int
}

// findMode runs damped Newton (IRLS) on
//
//	Σ t log σ(a) + (1-t) log σ(-a) - ½ Σ α μ²,   a = Φμ
//
// starting from warm. Each Newton direction is solved through a Cholesky
// factorization of H = ΦᵀBΦ + diag α and halved until the objective does
// not decrease. Hitting maxSteps accepts the current point.
func findMode(outer int, phi *mat.Dense, alpha []float64, t, warm *mat.VecDense, maxSteps int, tol float64) (*mode, error) {
	n, m := phi.Dims()

	mu := mat.NewVecDense(m, nil)
	if warm != nil && warm.Len() == m {
		mu.CopyVec(warm)
	}
	a := mat.NewVecDense(n, nil)
	a.MulVec(phi, mu)
	obj := logPosterior(a, t, mu, alpha)
	if math.IsNaN(obj) || math.IsInf(obj, 0) {
		return nil, errors.NewModeFindingError(outer, 0, math.NaN(), "non-finite objective at the starting point", nil)
	}

	y := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(m, nil)
	delta := mat.NewVecDense(m, nil)
	cand := mat.NewVecDense(m, nil)
	candA := mat.NewVecDense(n, nil)

	step := 0
	for ; step < maxSteps; step++ {
		sigmoidTo(y, a)
		gradientTo(grad, phi, t, y, mu, alpha)
		gnorm := mat.Norm(grad, math.Inf(1))
		if math.IsNaN(gnorm) || math.IsInf(gnorm, 0) {
			return nil, errors.NewModeFindingError(outer, step, gnorm, "non-finite gradient", nil)
		}
		if gnorm < tol {
			break
		}

		h := gramPlusDiag(phi, curvature(y), alpha)
		chol, _, ok := factorize(h)
		if !ok {
			return nil, errors.NewModeFindingError(outer, step, gnorm, "hessian is not positive definite", errors.ErrNotPositiveDefinite)
		}
		if err := accept(chol.SolveVecTo(delta, grad)); err != nil {
			return nil, errors.NewModeFindingError(outer, step, gnorm, "newton solve failed", err)
		}

		accepted := false
		for lambda := 1.0; lambda >= minStep; lambda /= 2 {
			cand.AddScaledVec(mu, lambda, delta)
			candA.MulVec(phi, cand)
			next := logPosterior(candA, t, cand, alpha)
			if next >= obj && !math.IsInf(next, 0) {
				mu.CopyVec(cand)
				a.CopyVec(candA)
				obj = next
				accepted = true
				break
			}
		}
		if !accepted {
			// no ascent direction left at working precision
			if gnorm <= math.Sqrt(tol) {
				break
			}
			return nil, errors.NewModeFindingError(outer, step, gnorm, "line search could not increase the log posterior", nil)
		}
	}

	sigmoidTo(y, a)
	return &mode{mu: mu, y: y, steps: step}, nil
}

func logPosterior(a, t, mu *mat.VecDense, alpha []float64) float64 {
	var ll float64
	for i := 0; i < a.Len(); i++ {
		ai, ti := a.AtVec(i), t.AtVec(i)
		ll += ti*errors.LogSigmoid(ai) + (1-ti)*errors.LogSigmoid(-ai)
	}
	var penalty float64
	for j, al := range alpha {
		w := mu.AtVec(j)
		penalty += al * w * w
	}
	return ll - penalty/2
}

// gradientTo stores Φᵀ(t - y) - α∘μ in dst.
func gradientTo(dst *mat.VecDense, phi *mat.Dense, t, y, mu *mat.VecDense, alpha []float64) {
	var r mat.VecDense
	r.SubVec(t, y)
	dst.MulVec(phi.T(), &r)
	for j, al := range alpha {
		dst.SetVec(j, dst.AtVec(j)-al*mu.AtVec(j))
	}
}

func sigmoidTo(dst, a *mat.VecDense) {
	for i := 0; i < a.Len(); i++ {
		dst.SetVec(i, errors.Sigmoid(a.AtVec(i)))
	}
}

// curvature returns the IRLS weights y(1-y).
func curvature(y *mat.VecDense) []float64 {
	out := make([]float64, y.Len())
	for i := range out {
		v := y.AtVec(i)
		out[i] = v * (1 - v)
	}
	return out
}
