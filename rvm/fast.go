package rvm

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/pkg/log"
)

// fastState carries the sequential variant between basis visits: the active
// set, the posterior over it, and the sparsity and quality factors S and Q
// of every candidate column.
type fastState struct {
	p    *problem
	set  *activeSet
	post *posterior
	pass int
	// postCols are the columns post was computed for
	postCols []int

	// S[m] and Q[m] refer to the model as it stands, whether or not column
	// m is part of it.
	S, Q []float64
}

func newFastState(p *problem) *fastState {
	m := p.numBases()
	return &fastState{
		p:   p,
		set: &activeSet{},
		S:   make([]float64, m),
		Q:   make([]float64, m),
	}
}

// recompute refreshes the posterior and the factors after any change. With
// W = βI for regression and W = diag(y(1-y)) at the mode for classification:
//
//	S_m = φᵀWφ - φᵀWΦΣΦᵀWφ
//	Q_m = βφᵀ(t - Φμ)   or   φᵀ(t - y)
//
// The posterior is re-solved from scratch rather than updated by rank-one
// corrections. A visit costs O(N·M·m), which is fine at the training sizes
// this package targets, and classification needs a fresh Laplace mode after
// every change anyway.
func (st *fastState) recompute() error {
	p := st.p
	var warm *mat.VecDense
	if st.post != nil {
		warm = carry(st.postCols, st.post.mu, st.set.cols)
	}

	post, err := p.computePosterior(st.pass, st.set, warm)
	if err != nil {
		return err
	}
	st.post = post
	st.postCols = append(st.postCols[:0], st.set.cols...)

	n, M := p.phi.Dims()
	w := make([]float64, n)
	r := mat.NewVecDense(n, nil)
	r.SubVec(p.t, post.fitted)
	if p.task == TaskRegression {
		for i := range w {
			w[i] = p.beta
		}
		r.ScaleVec(p.beta, r)
	} else {
		w = curvature(post.fitted)
	}

	q := mat.NewVecDense(M, nil)
	q.MulVec(p.phi.T(), r)

	for j := 0; j < M; j++ {
		var d float64
		for i := 0; i < n; i++ {
			v := p.phi.At(i, j)
			d += w[i] * v * v
		}
		st.S[j] = d
		st.Q[j] = q.AtVec(j)
	}

	m := st.set.len()
	if m == 0 {
		return nil
	}

	// P = ΦᵀWΦ_active, S_m -= (PΣPᵀ)_mm
	wPhiA := columns(p.phi, st.set.cols)
	for i := 0; i < n; i++ {
		for k := 0; k < m; k++ {
			wPhiA.Set(i, k, w[i]*wPhiA.At(i, k))
		}
	}
	var pm, ps mat.Dense
	pm.Mul(p.phi.T(), wPhiA)
	ps.Mul(&pm, post.sigma)
	for j := 0; j < M; j++ {
		var v float64
		for k := 0; k < m; k++ {
			v += ps.At(j, k) * pm.At(j, k)
		}
		st.S[j] -= v
	}
	return nil
}

// factors returns the s and q of column col, that is S and Q computed as if
// col were left out of the model.
func (st *fastState) factors(col int) (s, q float64, pos int, ok bool) {
	S, Q := st.S[col], st.Q[col]
	pos = st.set.position(col)
	if pos < 0 {
		return S, Q, pos, true
	}
	alpha := st.set.alpha[pos]
	denom := alpha - S
	if !(denom > 0) {
		return 0, 0, pos, false
	}
	return alpha * S / denom, alpha * Q / denom, pos, true
}

// visit takes the add/re-estimate/delete decision for one column and applies
// it. The returned delta is |Δ log α| for re-estimations. A column whose
// optimal α would reach AlphaThreshold counts as irrelevant: it is not added,
// and it is deleted when in the model unless it is the bias or the last basis,
// in which case its α is capped at the threshold.
func (st *fastState) visit(col int) (BasisAction, float64, error) {
	s, q, pos, ok := st.factors(col)
	if !ok || !(s > 0) {
		return ActionNone, 0, nil
	}
	threshold := st.p.cfg.AlphaThreshold
	theta := q*q - s
	next := threshold
	if theta > 0 {
		next = math.Min(s*s/theta, threshold)
	}
	relevant := next < threshold

	switch {
	case pos < 0:
		if !relevant {
			return ActionNone, 0, nil
		}
		st.set.add(col, next)
		return ActionAdd, 0, st.recompute()

	case !relevant && !st.p.protected(col) && st.set.len() > 1:
		st.set.removeAt(pos)
		return ActionDelete, 0, st.recompute()

	case theta > 0:
		delta := math.Abs(math.Log(next) - math.Log(st.set.alpha[pos]))
		st.set.alpha[pos] = next
		return ActionReestimate, delta, st.recompute()
	}
	return ActionNone, 0, nil
}

// start seeds the model with a single column: the bias when there is one,
// otherwise the column with the largest Q²/S.
func (st *fastState) start() error {
	if err := st.recompute(); err != nil {
		return err
	}

	col := 0
	if !st.p.bias {
		best := math.Inf(-1)
		for j := range st.S {
			if st.S[j] <= 0 {
				continue
			}
			if v := st.Q[j] * st.Q[j] / st.S[j]; v > best {
				best, col = v, j
			}
		}
	}

	alpha := st.p.cfg.AlphaInit
	if s, q := st.S[col], st.Q[col]; s > 0 && q*q > s {
		alpha = math.Min(s*s/(q*q-s), st.p.cfg.AlphaThreshold)
	}
	st.set.add(col, alpha)
	return st.recompute()
}

// updateBeta re-estimates the noise precision from the current posterior and
// returns |Δ log β|.
func (st *fastState) updateBeta() (float64, error) {
	p := st.p
	var gammaSum float64
	for j, a := range st.set.alpha {
		if g := 1 - a*st.post.sigma.At(j, j); g > 0 {
			gammaSum += g
		}
	}
	old := p.beta
	p.beta = p.nextBeta(gammaSum, p.residual(st.post.fitted))
	if p.beta == old {
		return 0, nil
	}
	return math.Abs(math.Log(p.beta) - math.Log(old)), st.recompute()
}

// fitFast visits one column at a time until a full pass makes no addition or
// deletion and every re-estimate (and β) moved by less than the convergence
// threshold.
func (p *problem) fitFast() (*solution, error) {
	st := newFastState(p)
	if err := st.start(); err != nil {
		return nil, err
	}

	M := p.numBases()
	order := make([]int, M)
	for j := range order {
		order[j] = j
	}
	var rng *rand.Rand
	if p.cfg.RandomOrder {
		seed := p.cfg.RandomState
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	passes := 0
	converged := false
	for pass := 1; pass <= p.cfg.MaxIter; pass++ {
		passes = pass
		st.pass = pass
		if rng != nil {
			rng.Shuffle(M, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		changed := false
		deleted := 0
		maxDelta := 0.0
		for _, col := range order {
			action, delta, err := st.visit(col)
			if err != nil {
				return nil, err
			}
			if action == ActionNone {
				continue
			}

			ev := BasisEvent{Task: p.task, Pass: pass, Column: col, Basis: p.trainingIndex(col), Action: action}
			switch action {
			case ActionAdd, ActionReestimate:
				ev.Alpha = st.set.alpha[st.set.position(col)]
			}
			p.observer.OnBasisEvent(ev)
			p.logger.Debug("basis update",
				log.IterationKey, pass,
				log.BasisIndexKey, ev.Basis,
				log.BasisActionKey, action.String(),
			)

			switch action {
			case ActionAdd:
				changed = true
			case ActionDelete:
				changed = true
				deleted++
			case ActionReestimate:
				maxDelta = math.Max(maxDelta, delta)
			}
		}

		betaDelta := 0.0
		if p.task == TaskRegression {
			d, err := st.updateBeta()
			if err != nil {
				return nil, err
			}
			betaDelta = d
		}

		stats := IterationStats{
			Task:             p.task,
			Iteration:        pass,
			Retained:         st.set.len(),
			Pruned:           deleted,
			MaxDeltaLogAlpha: maxDelta,
			NewtonSteps:      st.post.steps,
		}
		if p.task == TaskRegression {
			stats.Beta = p.beta
		}
		p.observer.OnIteration(stats)
		p.logger.Debug("pass",
			log.IterationKey, pass,
			log.RetainedBasesKey, st.set.len(),
			log.PrunedBasesKey, deleted,
			log.MaxDeltaLogAlphaKey, maxDelta,
			log.BetaKey, stats.Beta,
		)

		if !changed && maxDelta < p.cfg.ConvergenceThreshold && betaDelta < p.cfg.ConvergenceThreshold {
			converged = true
			break
		}
	}

	return &solution{set: st.set, post: st.post, beta: p.beta, iterations: passes, converged: converged}, nil
}
