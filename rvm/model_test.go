package rvm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/kernel"
	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
)

// handModel is y = 0.5 + 2·k(x, 1) with a linear kernel.
func handModel(task Task) *FittedModel {
	return &FittedModel{
		Task:             task,
		Kernel:           kernel.Linear{},
		Bias:             true,
		Features:         1,
		RelevanceVectors: mat.NewDense(1, 1, []float64{1}),
		RelevanceIndices: []int{3},
		Mean:             mat.NewVecDense(2, []float64{0.5, 2}),
		Covariance:       mat.NewSymDense(2, []float64{0.1, 0, 0, 0.2}),
		Alpha:            []float64{1, 1},
		Beta:             4,
		Converged:        true,
	}
}

func TestFittedModelPredict(t *testing.T) {
	fm := handModel(TaskRegression)
	X := mat.NewDense(2, 1, []float64{0, 3})

	mean, err := fm.Predict(X)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, mean.AtVec(0), 1e-12)
	assert.InDelta(t, 6.5, mean.AtVec(1), 1e-12)

	// 1/β + φᵀΣφ with φ = (1, x)
	variance, err := fm.PredictVariance(X)
	require.NoError(t, err)
	assert.InDelta(t, 0.25+0.1, variance.AtVec(0), 1e-12)
	assert.InDelta(t, 0.25+0.1+0.2*9, variance.AtVec(1), 1e-12)
}

func TestFittedModelClassificationProbability(t *testing.T) {
	fm := handModel(TaskClassification)
	prob, err := fm.Predict(mat.NewDense(2, 1, []float64{0, -0.25}))
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-0.5)), prob.AtVec(0), 1e-12)
	assert.InDelta(t, 0.5, prob.AtVec(1), 1e-12)
}

func TestFittedModelDesignErrors(t *testing.T) {
	fm := handModel(TaskRegression)
	var shape *errors.InputShapeError

	_, err := fm.Predict(mat.NewDense(2, 2, nil))
	assert.True(t, errors.As(err, &shape), "got %v", err)

	_, err = fm.Design(&mat.Dense{})
	assert.True(t, errors.As(err, &shape), "got %v", err)
}

func TestFittedModelBiasOnly(t *testing.T) {
	fm := &FittedModel{
		Task:       TaskRegression,
		Kernel:     kernel.RBF{Sigma: 1},
		Bias:       true,
		Features:   2,
		Mean:       mat.NewVecDense(1, []float64{-1.5}),
		Covariance: mat.NewSymDense(1, []float64{0.01}),
		Alpha:      []float64{1e9},
		Beta:       1,
	}
	assert.Zero(t, fm.NumRelevanceVectors())

	phi, err := fm.Design(mat.NewDense(3, 2, nil))
	require.NoError(t, err)
	r, c := phi.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 1, c)

	mean, err := fm.Predict(mat.NewDense(3, 2, nil))
	require.NoError(t, err)
	assert.Equal(t, []float64{-1.5, -1.5, -1.5}, mean.RawVector().Data)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "regression", TaskRegression.String())
	assert.Equal(t, "classification", TaskClassification.String())
	assert.Equal(t, "add", ActionAdd.String())
	assert.Equal(t, "reestimate", ActionReestimate.String())
	assert.Equal(t, "delete", ActionDelete.String())
	assert.Equal(t, "none", ActionNone.String())
}
