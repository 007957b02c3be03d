package rvm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
)

// posterior is the Gaussian weight posterior over the active columns.
// fitted is Φμ for regression and σ(Φμ) at the mode for classification.
type posterior struct {
	mu     *mat.VecDense
	sigma  *mat.SymDense
	fitted *mat.VecDense
	steps  int
}

// computePosterior produces (μ, Σ) for the active set: in closed form for
// regression, by the Laplace approximation for classification. warm seeds
// the mode search and may be nil.
func (p *problem) computePosterior(iter int, set *activeSet, warm *mat.VecDense) (*posterior, error) {
	n := p.t.Len()
	if set.len() == 0 {
		fitted := mat.NewVecDense(n, nil)
		if p.task == TaskClassification {
			for i := 0; i < n; i++ {
				fitted.SetVec(i, 0.5)
			}
		}
		return &posterior{fitted: fitted}, nil
	}

	phiA := columns(p.phi, set.cols)
	if p.task == TaskClassification {
		return p.laplacePosterior(iter, set, phiA, warm)
	}
	return p.regressionPosterior(iter, set, phiA)
}

// regressionPosterior computes Σ = (βΦᵀΦ + diag α)⁻¹ and μ = βΣΦᵀt.
func (p *problem) regressionPosterior(iter int, set *activeSet, phiA *mat.Dense) (*posterior, error) {
	n := p.t.Len()
	a := gramPlusDiag(phiA, constant(n, p.beta), set.alpha)

	chol, bad, ok := factorize(a)
	if !ok {
		return nil, errors.NewBasisInstabilityError("posterior_cholesky", diagonal(a), iter, p.trainingIndex(set.cols[bad]))
	}

	m := set.len()
	sigma := mat.NewSymDense(m, nil)
	if err := accept(chol.InverseTo(sigma)); err != nil {
		return nil, errors.NewNumericalInstabilityError("posterior_inverse", diagonal(a), iter)
	}

	rhs := mat.NewVecDense(m, nil)
	rhs.MulVec(phiA.T(), p.t)
	rhs.ScaleVec(p.beta, rhs)

	mu := mat.NewVecDense(m, nil)
	if err := accept(chol.SolveVecTo(mu, rhs)); err != nil {
		return nil, errors.NewNumericalInstabilityError("posterior_mean", rhs.RawVector().Data, iter)
	}
	if err := p.checkActive("posterior_mean", mu, set, iter); err != nil {
		return nil, err
	}

	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(phiA, mu)
	return &posterior{mu: mu, sigma: sigma, fitted: fitted}, nil
}

// laplacePosterior finds the mode of the penalized log-likelihood and takes
// Σ = H⁻¹ there.
func (p *problem) laplacePosterior(iter int, set *activeSet, phiA *mat.Dense, warm *mat.VecDense) (*posterior, error) {
	md, err := findMode(iter, phiA, set.alpha, p.t, warm, p.cfg.InnerMaxIter, p.cfg.InnerTolerance)
	if err != nil {
		return nil, err
	}

	h := gramPlusDiag(phiA, curvature(md.y), set.alpha)
	chol, bad, ok := factorize(h)
	if !ok {
		return nil, errors.NewBasisInstabilityError("laplace_cholesky", diagonal(h), iter, p.trainingIndex(set.cols[bad]))
	}
	sigma := mat.NewSymDense(set.len(), nil)
	if err := accept(chol.InverseTo(sigma)); err != nil {
		return nil, errors.NewNumericalInstabilityError("laplace_covariance", diagonal(h), iter)
	}
	return &posterior{mu: md.mu, sigma: sigma, fitted: md.y, steps: md.steps}, nil
}

// checkActive reports the training index of the first non-finite entry of v.
func (p *problem) checkActive(op string, v mat.Vector, set *activeSet, iter int) error {
	err := errors.CheckVector(op, v, iter)
	var nie *errors.NumericalInstabilityError
	if err != nil && errors.As(err, &nie) && nie.BasisIndex >= 0 && nie.BasisIndex < set.len() {
		nie.BasisIndex = p.trainingIndex(set.cols[nie.BasisIndex])
	}
	return err
}
