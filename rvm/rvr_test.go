package rvm

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/datasets"
	"github.com/YuminosukeSato/sparsebayes/kernel"
	"github.com/YuminosukeSato/sparsebayes/metrics"
	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
	"github.com/YuminosukeSato/sparsebayes/pkg/log"
)

// recorder keeps everything an Observer is told.
type recorder struct {
	iterations []IterationStats
	events     []BasisEvent
	summaries  []FitSummary
}

func (r *recorder) OnIteration(s IterationStats) { r.iterations = append(r.iterations, s) }
func (r *recorder) OnBasisEvent(e BasisEvent)    { r.events = append(r.events, e) }
func (r *recorder) OnFitComplete(s FitSummary)   { r.summaries = append(r.summaries, s) }

func (r *recorder) retained() []int {
	out := make([]int, len(r.iterations))
	for i, s := range r.iterations {
		out[i] = s.Retained
	}
	return out
}

// heldOutSinc returns points between the training grid of SincNoiseFree and
// their exact sinc values.
func heldOutSinc(n int) (*mat.Dense, *mat.VecDense) {
	xs := floats.Span(make([]float64, n), -9.5, 9.5)
	ys := make([]float64, n)
	for i, x := range xs {
		ys[i] = datasets.Sinc(x)
	}
	return mat.NewDense(n, 1, xs), mat.NewVecDense(n, ys)
}

func sincMSE(t *testing.T, predict func(mat.Matrix) (mat.Matrix, error)) float64 {
	t.Helper()
	X, want := heldOutSinc(57)
	got, err := predict(X)
	require.NoError(t, err)
	mse, err := metrics.MSE(want, columnVector(got))
	require.NoError(t, err)
	return mse
}

func TestRVRSincIsSparseAndAccurate(t *testing.T) {
	const n = 100
	X, y, err := datasets.SincNoiseFree(n)
	require.NoError(t, err)

	rec := &recorder{}
	r := NewRVR(WithObserver(rec))
	require.NoError(t, r.Fit(X, y))

	fm := r.Model()
	require.NotNil(t, fm)
	assert.True(t, fm.Converged)
	assert.Greater(t, fm.NumRelevanceVectors(), 0)
	assert.Less(t, fm.NumRelevanceVectors(), n/4, "the expansion keeps only a small share of the training points")
	assert.Less(t, sincMSE(t, r.Predict), 1e-3)

	require.Len(t, rec.summaries, 1)
	assert.Equal(t, fm.NumRelevanceVectors(), rec.summaries[0].RelevanceVectors)
	assert.Equal(t, fm.Iterations, rec.summaries[0].Iterations)
}

func TestRVRRetainedBasesNeverGrow(t *testing.T) {
	X, y, err := datasets.SincGaussianNoise(80, 0.1, rand.NewPCG(7, 7))
	require.NoError(t, err)

	rec := &recorder{}
	r := NewRVR(WithObserver(rec))
	require.NoError(t, r.Fit(X, y))

	retained := rec.retained()
	require.NotEmpty(t, retained)
	assert.LessOrEqual(t, retained[0], 81)
	for i := 1; i < len(retained); i++ {
		assert.LessOrEqual(t, retained[i], retained[i-1], "iteration %d", i+1)
	}
	for _, s := range rec.iterations {
		assert.Greater(t, s.Beta, 0.0)
		assert.Equal(t, TaskRegression, s.Task)
	}
}

func TestRVRRelevanceVectorsAreTrainingRows(t *testing.T) {
	X, y, err := datasets.SincNoiseFree(60)
	require.NoError(t, err)

	r := NewRVR()
	require.NoError(t, r.Fit(X, y))
	fm := r.Model()

	require.Equal(t, fm.NumRelevanceVectors(), len(fm.RelevanceIndices))
	assert.True(t, sortedUnique(fm.RelevanceIndices))
	for row, idx := range fm.RelevanceIndices {
		assert.Equal(t, X.At(idx, 0), fm.RelevanceVectors.At(row, 0))
	}

	// bias first, then one weight per relevance vector
	assert.Equal(t, fm.NumRelevanceVectors()+1, fm.Mean.Len())
	assert.Len(t, fm.Alpha, fm.Mean.Len())
	for _, a := range fm.Alpha {
		assert.Less(t, a, DefaultConfig().AlphaThreshold+1)
		assert.Greater(t, a, 0.0)
	}
}

func sortedUnique(xs []int) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}

func TestRVRPredictIsIdempotent(t *testing.T) {
	X, y, err := datasets.SincGaussianNoise(50, 0.05, rand.NewPCG(1, 1))
	require.NoError(t, err)

	r := NewRVR()
	require.NoError(t, r.Fit(X, y))

	Xt, _ := heldOutSinc(20)
	first, err := r.Predict(Xt)
	require.NoError(t, err)
	second, err := r.Predict(Xt)
	require.NoError(t, err)
	assert.True(t, mat.Equal(first, second))
}

func TestRVRFittedModelRoundTrip(t *testing.T) {
	X, y, err := datasets.SincGaussianNoise(50, 0.05, rand.NewPCG(2, 2))
	require.NoError(t, err)

	r := NewRVR()
	require.NoError(t, r.Fit(X, y))
	fm := r.Model()

	// a model rebuilt from the exported fields alone predicts the same
	k, err := kernel.New(fm.Kernel.Name(), fm.Kernel.Params()...)
	require.NoError(t, err)
	clone := &FittedModel{
		Task:             fm.Task,
		Kernel:           k,
		Bias:             fm.Bias,
		Features:         fm.Features,
		RelevanceVectors: mat.DenseCopyOf(fm.RelevanceVectors),
		RelevanceIndices: append([]int(nil), fm.RelevanceIndices...),
		Mean:             mat.VecDenseCopyOf(fm.Mean),
		Covariance:       mat.NewSymDense(fm.Covariance.SymmetricDim(), nil),
		Alpha:            append([]float64(nil), fm.Alpha...),
		Beta:             fm.Beta,
	}
	clone.Covariance.CopySym(fm.Covariance)

	Xt, _ := heldOutSinc(15)
	want, err := fm.Predict(Xt)
	require.NoError(t, err)
	got, err := clone.Predict(Xt)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, got, 1e-12))

	wantVar, err := fm.PredictVariance(Xt)
	require.NoError(t, err)
	gotVar, err := clone.PredictVariance(Xt)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(wantVar, gotVar, 1e-12))
}

func TestRVRPredictWithVariance(t *testing.T) {
	X, y, err := datasets.SincGaussianNoise(60, 0.1, rand.NewPCG(3, 3))
	require.NoError(t, err)

	r := NewRVR()
	require.NoError(t, r.Fit(X, y))

	Xt, _ := heldOutSinc(10)
	mean, variance, err := r.PredictWithVariance(Xt)
	require.NoError(t, err)
	require.Equal(t, 10, mean.Len())
	require.Equal(t, 10, variance.Len())

	noise := 1 / r.Model().Beta
	for i := 0; i < variance.Len(); i++ {
		assert.GreaterOrEqual(t, variance.AtVec(i), noise-1e-12, "predictive variance includes the noise term")
	}
}

func TestRVRScore(t *testing.T) {
	X, y, err := datasets.SincNoiseFree(80)
	require.NoError(t, err)

	r := NewRVR()
	require.NoError(t, r.Fit(X, y))
	score, err := r.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)
}

func TestRVRInputValidation(t *testing.T) {
	t.Run("single sample", func(t *testing.T) {
		err := NewRVR().Fit(mat.NewDense(1, 1, []float64{0}), mat.NewDense(1, 1, []float64{1}))
		var shape *errors.InputShapeError
		require.True(t, errors.As(err, &shape), "got %v", err)
	})
	t.Run("row mismatch", func(t *testing.T) {
		err := NewRVR().Fit(mat.NewDense(3, 1, []float64{0, 1, 2}), mat.NewDense(2, 1, []float64{1, 2}))
		var shape *errors.InputShapeError
		require.True(t, errors.As(err, &shape), "got %v", err)
	})
	t.Run("targets not a column", func(t *testing.T) {
		err := NewRVR().Fit(mat.NewDense(2, 1, []float64{0, 1}), mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
		var shape *errors.InputShapeError
		require.True(t, errors.As(err, &shape), "got %v", err)
	})
	t.Run("NaN target", func(t *testing.T) {
		err := NewRVR().Fit(mat.NewDense(2, 1, []float64{0, 1}), mat.NewDense(2, 1, []float64{1, math.NaN()}))
		var value *errors.ValueError
		require.True(t, errors.As(err, &value), "got %v", err)
	})
	t.Run("invalid hyperparameter", func(t *testing.T) {
		err := NewRVR(WithMaxIter(0)).Fit(mat.NewDense(2, 1, []float64{0, 1}), mat.NewDense(2, 1, []float64{1, 2}))
		var verr *errors.ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)
	})
	t.Run("unknown kernel", func(t *testing.T) {
		err := NewRVR(WithKernelName("wavelet")).Fit(mat.NewDense(2, 1, []float64{0, 1}), mat.NewDense(2, 1, []float64{1, 2}))
		var verr *errors.ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)
	})
}

func TestRVRNotFitted(t *testing.T) {
	r := NewRVR()
	assert.False(t, r.IsFitted())
	assert.Nil(t, r.Model())

	_, err := r.Predict(mat.NewDense(1, 1, []float64{0}))
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf), "got %v", err)

	_, _, err = r.PredictWithVariance(mat.NewDense(1, 1, []float64{0}))
	assert.True(t, errors.As(err, &nf))
}

func TestRVRPredictRejectsWrongWidth(t *testing.T) {
	X, y, err := datasets.SincNoiseFree(30)
	require.NoError(t, err)
	r := NewRVR()
	require.NoError(t, r.Fit(X, y))

	_, err = r.Predict(mat.NewDense(2, 2, nil))
	assert.Error(t, err)
}

func TestRVRZeroTargetsKeepBiasOnly(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{-2, -1, 0, 1, 2})
	y := mat.NewDense(5, 1, nil)

	logger, _ := log.NewTestLogger(log.LevelDebug)
	r := NewRVR(WithLogger(logger))
	require.NoError(t, r.Fit(X, y))

	fm := r.Model()
	assert.True(t, fm.Converged)
	assert.Equal(t, 0, fm.NumRelevanceVectors())
	assert.Nil(t, fm.RelevanceVectors)
	assert.Equal(t, 1, fm.Mean.Len())
	assert.True(t, logger.ContainsMessage("every kernel basis was pruned"))

	pred, err := r.Predict(X)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		assert.InDelta(t, 0, pred.At(i, 0), 1e-9)
	}
}

func TestRVRDegenerateWithoutBias(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{-1, 0, 1, 2})
	y := mat.NewDense(4, 1, nil)

	r := NewRVR(WithBias(false))
	err := r.Fit(X, y)
	var degenerate *errors.DegenerateModelError
	require.True(t, errors.As(err, &degenerate), "got %v", err)
	assert.False(t, r.IsFitted())
	assert.Nil(t, r.Model())
}

func TestRVRMaxIterReachedIsSoft(t *testing.T) {
	X, y, err := datasets.SincNoiseFree(40)
	require.NoError(t, err)

	captured, _ := log.NewTestLogger(log.LevelWarn)
	prev := log.GetLogger()
	log.SetLogger(captured)
	defer log.SetLogger(prev)

	r := NewRVR(WithMaxIter(1))
	require.NoError(t, r.Fit(X, y))

	fm := r.Model()
	assert.False(t, fm.Converged)
	assert.Equal(t, 1, fm.Iterations)
	assert.True(t, r.IsFitted())
	assert.True(t, captured.ContainsMessage("RVR failed to converge after 1 iterations"))

	_, err = r.Predict(X)
	assert.NoError(t, err)
}

func TestRVRFixedBeta(t *testing.T) {
	X, y, err := datasets.SincGaussianNoise(40, 0.1, rand.NewPCG(5, 5))
	require.NoError(t, err)

	r := NewRVR(WithBetaInit(50), WithFixedBeta(true))
	require.NoError(t, r.Fit(X, y))
	assert.Equal(t, 50.0, r.Model().Beta)
}

func TestRVRBetaStaysWithinBounds(t *testing.T) {
	X, y, err := datasets.SincNoiseFree(40)
	require.NoError(t, err)

	r := NewRVR(WithBetaBounds(1, 200))
	require.NoError(t, r.Fit(X, y))
	beta := r.Model().Beta
	assert.GreaterOrEqual(t, beta, 1.0)
	assert.LessOrEqual(t, beta, 200.0)
}

func TestRVRLogsCarryEstimatorID(t *testing.T) {
	X, y, err := datasets.SincNoiseFree(30)
	require.NoError(t, err)

	logger, _ := log.NewTestLogger(log.LevelInfo)
	r := NewRVR(WithLogger(logger))
	require.NoError(t, r.Fit(X, y))

	started := logger.EntriesWithMessage("fit started")
	require.Len(t, started, 1)
	assert.Equal(t, r.ID(), started[0][log.EstimatorIDKey])
	assert.Equal(t, "RVR", started[0][log.ModelNameKey])
	assert.Equal(t, "rbf", started[0][log.KernelKey])
	assert.Equal(t, log.StrategySimultaneous, started[0][log.StrategyKey])
	assert.Len(t, logger.EntriesWithMessage("fit finished"), 1)
}

func TestRVRCustomKernel(t *testing.T) {
	X, y, err := datasets.SincNoiseFree(40)
	require.NoError(t, err)

	r := NewRVR(WithKernel(kernel.RBF{Sigma: 1.5}))
	require.NoError(t, r.Fit(X, y))
	assert.Equal(t, "rbf", r.Model().Kernel.Name())
	assert.Equal(t, []float64{1.5}, r.Model().Kernel.Params())
}
