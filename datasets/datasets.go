// Package datasets generates the synthetic problems used to exercise the
// relevance vector machines: the sinc function with and without noise, and
// linearly separable two-class data.
//
// Every generator that draws random numbers takes an explicit source, so the
// same seed always yields the same data.
package datasets

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
)

// SincMin and SincMax bound the inputs of the sinc generators.
const (
	SincMin = -10.0
	SincMax = 10.0
)

// Sinc is sin(x)/x with Sinc(0) = 1.
func Sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(x) / x
}

// SincNoiseFree returns n equally spaced inputs on [-10, 10] as an n×1
// matrix together with their sinc values.
func SincNoiseFree(n int) (X, y *mat.Dense, err error) {
	if n < 2 {
		return nil, nil, errors.NewValidationError("n", "need at least 2 points", n)
	}
	xs := floats.Span(make([]float64, n), SincMin, SincMax)
	ys := make([]float64, n)
	for i, x := range xs {
		ys[i] = Sinc(x)
	}
	return mat.NewDense(n, 1, xs), mat.NewDense(n, 1, ys), nil
}

// SincGaussianNoise is SincNoiseFree with N(0, sigma²) noise added to every
// target.
func SincGaussianNoise(n int, sigma float64, src rand.Source) (X, y *mat.Dense, err error) {
	if !(sigma >= 0) {
		return nil, nil, errors.NewValidationError("sigma", "must be non-negative", sigma)
	}
	X, y, err = SincNoiseFree(n)
	if err != nil || sigma == 0 {
		return X, y, err
	}
	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	for i := 0; i < n; i++ {
		y.Set(i, 0, y.At(i, 0)+noise.Rand())
	}
	return X, y, nil
}

// SimpleClassData draws n points uniformly from [-1, 1]^len(w) and labels
// each one 1 when w·x > 0 and 0 otherwise.
func SimpleClassData(n int, w []float64, src rand.Source) (X, y *mat.Dense, err error) {
	if n < 1 {
		return nil, nil, errors.NewValidationError("n", "must be positive", n)
	}
	if len(w) == 0 {
		return nil, nil, errors.NewValidationError("w", "weight vector must not be empty", w)
	}
	d := len(w)
	u := distuv.Uniform{Min: -1, Max: 1, Src: src}

	X = mat.NewDense(n, d, nil)
	y = mat.NewDense(n, 1, nil)
	row := make([]float64, d)
	for i := 0; i < n; i++ {
		for j := range row {
			row[j] = u.Rand()
		}
		X.SetRow(i, row)
		if floats.Dot(w, row) > 0 {
			y.Set(i, 0, 1)
		}
	}
	return X, y, nil
}

// TrainTestSplit shuffles the rows of X and y with src and puts the first
// round(testSize·n) of them in the test set.
func TrainTestSplit(X, y mat.Matrix, testSize float64, src rand.Source) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	n, d := X.Dims()
	ny, cy := y.Dims()
	if ny != n {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", n, ny, 0)
	}
	if !(testSize > 0 && testSize < 1) {
		return nil, nil, nil, nil, errors.NewValidationError("testSize", "must be in (0, 1)", testSize)
	}
	nTest := int(math.Round(testSize * float64(n)))
	if nTest == 0 || nTest == n {
		return nil, nil, nil, nil, errors.NewValidationError("testSize", "leaves one of the splits empty", testSize)
	}

	perm := rand.New(src).Perm(n)
	XTest, yTest = mat.NewDense(nTest, d, nil), mat.NewDense(nTest, cy, nil)
	XTrain, yTrain = mat.NewDense(n-nTest, d, nil), mat.NewDense(n-nTest, cy, nil)
	for k, i := range perm {
		xs, ys := XTrain, yTrain
		r := k - nTest
		if k < nTest {
			xs, ys, r = XTest, yTest, k
		}
		xs.SetRow(r, mat.Row(nil, i, X))
		ys.SetRow(r, mat.Row(nil, i, y))
	}
	return XTrain, XTest, yTrain, yTest, nil
}
