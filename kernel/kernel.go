// Package kernel implements the kernel functions used as basis functions by
// the relevance vector machines, and the design-matrix builder that turns a
// set of inputs into the candidate basis matrix Φ.
//
// Kernels form a closed set of value types. A kernel is selected by name once,
// when an estimator is configured, and afterwards evaluated through the
// Kernel interface without any further dispatch on the name.
package kernel

import (
	"fmt"
	"math"
	"strings"

	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
)

// Default parameters, matching the drivers this package was built for.
const (
	DefaultSigma  = 2.0
	DefaultDegree = 3.0
)

// Kernel is a symmetric function of two input vectors of equal length.
type Kernel interface {
	// Evaluate returns k(x, y).
	Evaluate(x, y []float64) float64
	// Name returns the canonical name accepted by New.
	Name() string
	// Params returns the scalar hyperparameters in the order New accepts them.
	Params() []float64
}

// Linear is k(x, y) = x·y.
type Linear struct{}

func (Linear) Evaluate(x, y []float64) float64 { return dot(x, y) }
func (Linear) Name() string                      { return "linear" }
func (Linear) Params() []float64                 { return nil }

// LinearSpline is the univariate linear spline kernel, applied as a product
// over input dimensions:
//
//	1 + xy + xy·min(x,y) - (x+y)/2·min(x,y)² + min(x,y)³/3
type LinearSpline struct{}

func (LinearSpline) Evaluate(x, y []float64) float64 {
	k := 1.0
	for i := range x {
		a, b := x[i], y[i]
		m := math.Min(a, b)
		k *= 1 + a*b + a*b*m - (a+b)/2*m*m + m*m*m/3
	}
	return k
}
func (LinearSpline) Name() string      { return "linear_spline" }
func (LinearSpline) Params() []float64 { return nil }

// Polynomial is k(x, y) = (x·y + 1)^Degree.
type Polynomial struct {
	Degree float64
}

func (p Polynomial) Evaluate(x, y []float64) float64 {
	return math.Pow(dot(x, y)+1, p.Degree)
}
func (Polynomial) Name() string        { return "polynomial" }
func (p Polynomial) Params() []float64 { return []float64{p.Degree} }

// RBF is the Gaussian kernel k(x, y) = exp(-‖x-y‖² / (2σ²)).
type RBF struct {
	Sigma float64
}

func (r RBF) Evaluate(x, y []float64) float64 {
	return math.Exp(-sqDist(x, y) / (2 * r.Sigma * r.Sigma))
}
func (RBF) Name() string        { return "rbf" }
func (r RBF) Params() []float64 { return []float64{r.Sigma} }

// Cosine is k(x, y) = π/4 · cos(π/2 · ‖x-y‖).
type Cosine struct{}

func (Cosine) Evaluate(x, y []float64) float64 {
	return math.Pi / 4 * math.Cos(math.Pi/2*math.Sqrt(sqDist(x, y)))
}
func (Cosine) Name() string      { return "cosine" }
func (Cosine) Params() []float64 { return nil }

// Log is k(x, y) = log(1 + ‖x-y‖²).
type Log struct{}

func (Log) Evaluate(x, y []float64) float64 { return math.Log1p(sqDist(x, y)) }
func (Log) Name() string                      { return "log" }
func (Log) Params() []float64                 { return nil }

// Names lists the canonical kernel names accepted by New.
func Names() []string {
	return []string{"linear", "linear_spline", "polynomial", "rbf", "cosine", "log"}
}

// New resolves a kernel by name. Names are case-insensitive and may carry a
// "Kernel" suffix ("RBFKernel", "linearSplineKernel"). Parameterized kernels
// take at most one parameter: σ for rbf (default 2) and the degree for
// polynomial (default 3).
func New(name string, params ...float64) (Kernel, error) {
	key := normalizeName(name)

	switch key {
	case "linear", "linearspline", "cosine", "log":
		if len(params) > 0 {
			return nil, errors.NewValidationError("kernel_params", fmt.Sprintf("kernel %q takes no parameters", name), params)
		}
	case "polynomial", "poly", "rbf", "gaussian":
		if len(params) > 1 {
			return nil, errors.NewValidationError("kernel_params", fmt.Sprintf("kernel %q takes at most one parameter", name), params)
		}
	}

	switch key {
	case "linear":
		return Linear{}, nil
	case "linearspline":
		return LinearSpline{}, nil
	case "cosine":
		return Cosine{}, nil
	case "log":
		return Log{}, nil
	case "polynomial", "poly":
		degree := DefaultDegree
		if len(params) == 1 {
			degree = params[0]
		}
		if !(degree > 0) || math.IsInf(degree, 0) {
			return nil, errors.NewValidationError("kernel_params", "polynomial degree must be positive", degree)
		}
		return Polynomial{Degree: degree}, nil
	case "rbf", "gaussian":
		sigma := DefaultSigma
		if len(params) == 1 {
			sigma = params[0]
		}
		if !(sigma > 0) || math.IsInf(sigma, 0) {
			return nil, errors.NewValidationError("kernel_params", "rbf sigma must be positive", sigma)
		}
		return RBF{Sigma: sigma}, nil
	default:
		return nil, errors.NewValidationError("kernel", "unknown kernel, expected one of "+strings.Join(Names(), ", "), name)
	}
}

func normalizeName(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimSuffix(key, "kernel")
	key = strings.ReplaceAll(key, "_", "")
	return strings.ReplaceAll(key, "-", "")
}

func dot(x, y []float64) float64 {
	var sum float64
	for i := range x {
		sum += x[i] * y[i]
	}
	return sum
}

func sqDist(x, y []float64) float64 {
	var sum float64
	for i := range x {
		d := x[i] - y[i]
		sum += d * d
	}
	return sum
}
