package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
)

func TestStandardScalerFitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 10,
		3, 10,
		4, 10,
	})
	s := NewStandardScalerDefault()
	Z, err := s.FitTransform(X)
	require.NoError(t, err)

	assert.Equal(t, []float64{2.5, 10}, s.Mean)
	assert.InDelta(t, math.Sqrt(1.25), s.Scale[0], 1e-12)
	assert.Equal(t, 1.0, s.Scale[1], "constant columns keep unit scale")

	col := mat.Col(nil, 0, Z)
	assert.InDeltaSlice(t, []float64{-1.5, -0.5, 0.5, 1.5}, scaled(col, math.Sqrt(1.25)), 1e-12)
	assert.Equal(t, []float64{0, 0, 0, 0}, mat.Col(nil, 1, Z))

	back, err := s.InverseTransform(Z)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, back, 1e-12))
}

func scaled(v []float64, f float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * f
	}
	return out
}

func TestStandardScalerWithoutCentering(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{2, 6})
	s := NewStandardScaler(false, true)
	Z, err := s.FitTransform(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, s.Mean)
	assert.Equal(t, []float64{1, 3}, mat.Col(nil, 0, Z))
}

func TestStandardScalerErrors(t *testing.T) {
	s := NewStandardScalerDefault()
	assert.False(t, s.IsFitted())

	_, err := s.Transform(mat.NewDense(1, 1, []float64{1}))
	var nfe *errors.NotFittedError
	assert.True(t, errors.As(err, &nfe))

	require.NoError(t, s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = s.Transform(mat.NewDense(1, 3, nil))
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))

	assert.Error(t, s.Fit(&mat.Dense{}))
	assert.False(t, s.IsFitted(), "a failed fit resets the scaler")

	assert.Error(t, s.Fit(mat.NewDense(2, 1, []float64{1, math.NaN()})))
	assert.Contains(t, s.String(), "with_mean=true")
}
