package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
)

func TestKernelValues(t *testing.T) {
	x := []float64{1, 2}
	y := []float64{3, -1}

	tests := []struct {
		name   string
		kernel Kernel
		want   float64
	}{
		{"linear", Linear{}, 1},
		{"polynomial degree 2", Polynomial{Degree: 2}, 4},
		{"rbf", RBF{Sigma: 2}, math.Exp(-8.0 / 8.0)},
		{"cosine", Cosine{}, math.Pi / 4 * math.Cos(math.Pi/2*math.Sqrt(13))},
		{"log", Log{}, math.Log(14)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.kernel.Evaluate(x, y), 1e-12)
			assert.InDelta(t, tt.want, tt.kernel.Evaluate(y, x), 1e-12, "kernel must be symmetric")
		})
	}
}

func TestLinearSplineUnivariate(t *testing.T) {
	// x=1, y=2: min=1 → 1 + 2 + 2 - 1.5 + 1/3
	got := LinearSpline{}.Evaluate([]float64{1}, []float64{2})
	assert.InDelta(t, 1+2+2-1.5+1.0/3, got, 1e-12)

	// product over dimensions
	two := LinearSpline{}.Evaluate([]float64{1, 1}, []float64{2, 2})
	assert.InDelta(t, got*got, two, 1e-12)
}

func TestRBFSelfSimilarity(t *testing.T) {
	k := RBF{Sigma: 0.5}
	assert.Equal(t, 1.0, k.Evaluate([]float64{3, 4}, []float64{3, 4}))
	assert.Less(t, k.Evaluate([]float64{0}, []float64{3}), 1e-8)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		params []float64
		want   Kernel
	}{
		{"linear", nil, Linear{}},
		{"linearKernel", nil, Linear{}},
		{"linear_spline", nil, LinearSpline{}},
		{"linearSplineKernel", nil, LinearSpline{}},
		{"polynomial", nil, Polynomial{Degree: DefaultDegree}},
		{"polynomialKernel", []float64{2}, Polynomial{Degree: 2}},
		{"rbf", nil, RBF{Sigma: DefaultSigma}},
		{"RBFKernel", []float64{0.5}, RBF{Sigma: 0.5}},
		{"cosineKernel", nil, Cosine{}},
		{"log", nil, Log{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := New(tt.name, tt.params...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, k)
		})
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		kernel string
		params []float64
	}{
		{"unknown name", "sigmoid", nil},
		{"negative sigma", "rbf", []float64{-1}},
		{"zero degree", "polynomial", []float64{0}},
		{"nan sigma", "rbf", []float64{math.NaN()}},
		{"too many params", "rbf", []float64{1, 2}},
		{"param on linear", "linear", []float64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.kernel, tt.params...)
			require.Error(t, err)
			var verr *errors.ValidationError
			assert.True(t, errors.As(err, &verr), "expected ValidationError, got %T", err)
		})
	}
}

func TestNameRoundTrip(t *testing.T) {
	for _, name := range Names() {
		k, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, k.Name())

		again, err := New(k.Name(), k.Params()...)
		require.NoError(t, err)
		assert.Equal(t, k, again)
	}
}
