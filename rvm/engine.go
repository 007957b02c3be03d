package rvm

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/sparsebayes/kernel"
	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
	"github.com/YuminosukeSato/sparsebayes/pkg/log"
)

// problem is the state owned by one in-flight Fit.
type problem struct {
	task     Task
	phi      *mat.Dense
	t        *mat.VecDense
	bias     bool
	beta     float64
	cfg      Config
	logger   log.Logger
	observer Observer
}

// solution is what an engine hands back: the surviving columns with their
// precisions and the posterior over them.
type solution struct {
	set        *activeSet
	post       *posterior
	beta       float64
	iterations int
	converged  bool
}

func (p *problem) protected(col int) bool {
	return p.bias && col == 0
}

// trainingIndex maps a design-matrix column to its training row.
func (p *problem) trainingIndex(col int) int {
	if p.bias {
		if col == 0 {
			return errors.NoBasis
		}
		return col - 1
	}
	return col
}

func (p *problem) numBases() int {
	_, m := p.phi.Dims()
	return m
}

// initialBeta is BetaInit, or 100/var(t) when BetaInit is zero, clamped to
// the configured bounds.
func initialBeta(cfg Config, t *mat.VecDense) float64 {
	beta := cfg.BetaInit
	if beta == 0 {
		v := stat.Variance(t.RawVector().Data, nil)
		beta = cfg.BetaMax
		if v > 0 {
			beta = 100 / v
		}
	}
	return math.Min(math.Max(beta, cfg.BetaMin), cfg.BetaMax)
}

// nextBeta is β ← (N - Σγ)/‖t - Φμ‖², clamped. It keeps the current value
// when the effective number of residual degrees of freedom is not positive.
func (p *problem) nextBeta(gammaSum, residual float64) float64 {
	if p.cfg.FixedBeta {
		return p.beta
	}
	dof := float64(p.t.Len()) - gammaSum
	if !(dof > 0) || math.IsNaN(residual) {
		return p.beta
	}
	if residual <= 0 {
		return p.cfg.BetaMax
	}
	return math.Min(math.Max(dof/residual, p.cfg.BetaMin), p.cfg.BetaMax)
}

func (p *problem) residual(fitted *mat.VecDense) float64 {
	var r mat.VecDense
	r.SubVec(p.t, fitted)
	return sqNorm(&r)
}

// fitSimultaneous re-estimates every α at once per iteration and prunes
// columns whose precision reaches the threshold. Pruned columns are never
// revisited.
func (p *problem) fitSimultaneous() (*solution, error) {
	set := fullSet(p.numBases(), p.cfg.AlphaInit)

	var warm *mat.VecDense
	iterations := 0
	converged := false

	for iter := 1; iter <= p.cfg.MaxIter; iter++ {
		iterations = iter

		post, err := p.computePosterior(iter, set, warm)
		if err != nil {
			return nil, err
		}

		prevCols := append([]int(nil), set.cols...)
		step := set.reestimate(post.mu, post.sigma, p.cfg.AlphaThreshold, p.protected)
		if p.task == TaskRegression {
			p.beta = p.nextBeta(step.gammaSum, p.residual(post.fitted))
		}
		warm = carry(prevCols, post.mu, set.cols)

		stats := IterationStats{
			Task:             p.task,
			Iteration:        iter,
			Retained:         set.len(),
			Pruned:           len(step.pruned),
			MaxDeltaLogAlpha: step.maxDelta,
			NewtonSteps:      post.steps,
		}
		if p.task == TaskRegression {
			stats.Beta = p.beta
		}
		p.observer.OnIteration(stats)
		p.logger.Debug("iteration",
			log.IterationKey, iter,
			log.RetainedBasesKey, set.len(),
			log.PrunedBasesKey, len(step.pruned),
			log.MaxDeltaLogAlphaKey, step.maxDelta,
			log.BetaKey, stats.Beta,
		)

		if set.len() == 0 {
			return nil, errors.NewDegenerateModelError(p.task.String(), iter)
		}
		if set.onlyBias(p.bias) {
			p.logger.Warn("every kernel basis was pruned, keeping the bias-only model", log.IterationKey, iter)
			converged = true
			break
		}
		if len(step.pruned) == 0 && step.maxDelta < p.cfg.ConvergenceThreshold {
			converged = true
			break
		}
	}

	// the last α update changed the set, so the posterior is refreshed once
	post, err := p.computePosterior(iterations, set, warm)
	if err != nil {
		return nil, err
	}
	return &solution{set: set, post: post, beta: p.beta, iterations: iterations, converged: converged}, nil
}

// buildModel freezes a solution into a FittedModel. No NaN or Inf reaches
// the published model.
func (p *problem) buildModel(X mat.Matrix, k kernel.Kernel, sol *solution) (*FittedModel, error) {
	_, d := X.Dims()
	set, post := sol.set, sol.post

	if err := p.checkActive("fitted_mean", post.mu, set, sol.iterations); err != nil {
		return nil, err
	}
	if err := errors.CheckMatrix("fitted_covariance", post.sigma, sol.iterations); err != nil {
		return nil, err
	}
	if err := errors.CheckNumericalStability("fitted_alpha", set.alpha, sol.iterations); err != nil {
		return nil, err
	}
	if err := errors.CheckScalar("fitted_beta", sol.beta, sol.iterations); err != nil {
		return nil, err
	}

	// bias first, then relevance vectors in training order
	order := make([]int, 0, set.len())
	if pos := set.position(0); p.bias && pos >= 0 {
		order = append(order, pos)
	}
	var indices []int
	sorted := slices.Clone(set.cols)
	slices.Sort(sorted)
	for _, col := range sorted {
		if p.protected(col) {
			continue
		}
		order = append(order, set.position(col))
		indices = append(indices, p.trainingIndex(col))
	}

	m := len(order)
	mean := mat.NewVecDense(m, nil)
	cov := mat.NewSymDense(m, nil)
	alpha := make([]float64, m)
	for a, i := range order {
		mean.SetVec(a, post.mu.AtVec(i))
		alpha[a] = set.alpha[i]
		for b := a; b < m; b++ {
			cov.SetSym(a, b, post.sigma.At(i, order[b]))
		}
	}

	var rv *mat.Dense
	if len(indices) > 0 {
		rv = mat.NewDense(len(indices), d, nil)
		for r, idx := range indices {
			for c := 0; c < d; c++ {
				rv.Set(r, c, X.At(idx, c))
			}
		}
	}

	fm := &FittedModel{
		Task:             p.task,
		Kernel:           k,
		Bias:             p.bias,
		Features:         d,
		RelevanceVectors: rv,
		RelevanceIndices: indices,
		Mean:             mean,
		Covariance:       cov,
		Alpha:            alpha,
		Iterations:       sol.iterations,
		Converged:        sol.converged,
	}
	if p.task == TaskRegression {
		fm.Beta = sol.beta
	}
	return fm, nil
}
