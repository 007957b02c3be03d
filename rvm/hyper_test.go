package rvm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
)

func TestReestimate(t *testing.T) {
	set := fullSet(3, 1)
	mu := mat.NewVecDense(3, []float64{2, 0, 0.5})
	sigma := mat.NewSymDense(3, []float64{
		0.5, 0, 0,
		0, 0.2, 0,
		0, 0, 0.75,
	})

	step := set.reestimate(mu, sigma, 1e9, func(int) bool { return false })

	// γ = 1 - αΣⱼⱼ, α = γ/μ²
	assert.Equal(t, []int{1}, step.pruned, "a zero weight drives α to infinity")
	assert.Equal(t, []int{0, 2}, set.cols)
	assert.InDelta(t, 0.5/4, set.alpha[0], 1e-12)
	assert.InDelta(t, 0.25/0.25, set.alpha[1], 1e-12)
	assert.InDelta(t, 0.5+0.8+0.25, step.gammaSum, 1e-12)
	assert.InDelta(t, math.Abs(math.Log(0.125)), step.maxDelta, 1e-12)
}

func TestReestimateCapsProtectedColumn(t *testing.T) {
	set := fullSet(2, 1)
	mu := mat.NewVecDense(2, []float64{0, 1})
	sigma := mat.NewSymDense(2, []float64{0.1, 0, 0, 0.1})

	step := set.reestimate(mu, sigma, 1e9, func(col int) bool { return col == 0 })

	assert.Empty(t, step.pruned)
	assert.Equal(t, []int{0, 1}, set.cols)
	assert.Equal(t, 1e9, set.alpha[0])
	assert.InDelta(t, 0.9, set.alpha[1], 1e-12)
}

func TestReestimatePrunesUndeterminedWeights(t *testing.T) {
	set := fullSet(1, 4)
	mu := mat.NewVecDense(1, []float64{3})
	// αΣ = 1 leaves γ = 0
	sigma := mat.NewSymDense(1, []float64{0.25})

	step := set.reestimate(mu, sigma, 1e9, func(int) bool { return false })
	assert.Equal(t, []int{0}, step.pruned)
	assert.Zero(t, set.len())
}

func TestActiveSet(t *testing.T) {
	var s activeSet
	s.add(4, 1)
	s.add(7, 2)
	s.add(9, 3)
	assert.Equal(t, 1, s.position(7))
	assert.Equal(t, -1, s.position(5))

	s.removeAt(1)
	assert.Equal(t, []int{4, 9}, s.cols)
	assert.Equal(t, []float64{1, 3}, s.alpha)

	s.removeAt(1)
	s.removeAt(0)
	s.add(0, 1)
	assert.True(t, s.onlyBias(true))
	assert.False(t, s.onlyBias(false))
}

func TestCarry(t *testing.T) {
	prev := mat.NewVecDense(3, []float64{1, 2, 3})
	got := carry([]int{0, 4, 6}, prev, []int{6, 2, 0})
	assert.Equal(t, []float64{3, 0, 1}, got.RawVector().Data)

	assert.Nil(t, carry([]int{0}, prev, nil))
	assert.Equal(t, []float64{0, 0}, carry(nil, nil, []int{1, 2}).RawVector().Data)
}

func TestRegressionPosteriorMatchesClosedForm(t *testing.T) {
	p := twoBasisProblem(t)
	set := fullSet(2, 1)

	post, err := p.computePosterior(1, set, nil)
	require.NoError(t, err)

	// Σ⁻¹ = βΦᵀΦ + I
	var want mat.Dense
	want.Mul(p.phi.T(), p.phi)
	want.Scale(p.beta, &want)
	want.Set(0, 0, want.At(0, 0)+1)
	want.Set(1, 1, want.At(1, 1)+1)

	var id mat.Dense
	id.Mul(&want, post.sigma)
	assert.True(t, mat.EqualApprox(&id, eye(2), 1e-9))

	// the noise precision is large, so Φμ ≈ t
	assert.InDelta(t, 1, post.fitted.AtVec(0), 0.05)
	assert.InDelta(t, 1, post.fitted.AtVec(1), 0.05)
}

func TestPosteriorReportsFailingBasis(t *testing.T) {
	p := twoBasisProblem(t)
	p.phi.Set(0, 1, math.NaN())
	set := fullSet(2, 1)

	_, err := p.computePosterior(3, set, nil)
	var ni *errors.NumericalInstabilityError
	require.True(t, errors.As(err, &ni), "got %v", err)
	assert.Equal(t, 3, ni.Iteration)
	assert.Equal(t, "posterior_cholesky", ni.Operation)
	assert.Equal(t, 1, ni.BasisIndex)
}

func TestEmptyPosterior(t *testing.T) {
	p := twoBasisProblem(t)
	post, err := p.computePosterior(1, &activeSet{}, nil)
	require.NoError(t, err)
	assert.Nil(t, post.mu)
	assert.Equal(t, []float64{0, 0}, post.fitted.RawVector().Data)

	p.task = TaskClassification
	post, err = p.computePosterior(1, &activeSet{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, post.fitted.RawVector().Data)
}

func TestInitialBeta(t *testing.T) {
	cfg := DefaultConfig()
	tv := mat.NewVecDense(4, []float64{0, 1, 0, 1})
	// sample variance 1/3
	assert.InDelta(t, 300, initialBeta(cfg, tv), 1e-9)

	cfg.BetaInit = 7
	assert.Equal(t, 7.0, initialBeta(cfg, tv))

	cfg.BetaInit = 0
	assert.Equal(t, cfg.BetaMax, initialBeta(cfg, mat.NewVecDense(3, []float64{2, 2, 2})))
}

func TestNextBeta(t *testing.T) {
	p := twoBasisProblem(t)
	p.cfg.FixedBeta = false
	p.t = mat.NewVecDense(10, nil)

	assert.InDelta(t, 4.0, p.nextBeta(2, 2), 1e-12)
	assert.Equal(t, p.beta, p.nextBeta(10, 1), "no residual degrees of freedom keeps β")
	assert.Equal(t, p.cfg.BetaMax, p.nextBeta(2, 0))
	assert.Equal(t, p.cfg.BetaMin, p.nextBeta(9.9999999, 1e12))

	p.cfg.FixedBeta = true
	assert.Equal(t, p.beta, p.nextBeta(2, 2))
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
