package rvm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/kernel"
	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
)

// Task distinguishes regression from binary classification.
type Task int

const (
	TaskRegression Task = iota
	TaskClassification
)

func (t Task) String() string {
	if t == TaskClassification {
		return "classification"
	}
	return "regression"
}

// FittedModel is the sparse kernel expansion produced by Fit. Everything
// prediction needs is in its exported fields, so two FittedModels with equal
// fields predict identically. It must not be mutated after Fit returns.
type FittedModel struct {
	Task   Task
	Kernel kernel.Kernel
	// Bias reports whether Mean starts with the bias weight.
	Bias     bool
	Features int

	// RelevanceVectors holds one training input per row, nil when only the
	// bias survived. RelevanceIndices are their rows in the training set.
	RelevanceVectors *mat.Dense
	RelevanceIndices []int

	// Mean and Covariance are the weight posterior, ordered bias first and
	// then relevance vectors. Alpha follows the same order.
	Mean       *mat.VecDense
	Covariance *mat.SymDense
	Alpha      []float64
	// Beta is the noise precision; zero for classification.
	Beta float64

	Iterations int
	Converged  bool
}

// NumRelevanceVectors returns the number of retained training points.
func (m *FittedModel) NumRelevanceVectors() int {
	return len(m.RelevanceIndices)
}

// Design returns the design matrix between X and the relevance vectors.
func (m *FittedModel) Design(X mat.Matrix) (*mat.Dense, error) {
	n, d := X.Dims()
	if n == 0 {
		return nil, errors.NewInputShapeErrorFor("prediction", "empty input", []int{1, m.Features}, []int{n, d})
	}
	if d != m.Features {
		return nil, errors.NewInputShapeError("prediction", []int{n, m.Features}, []int{n, d})
	}
	var basis [][]float64
	if m.RelevanceVectors != nil {
		basis = kernel.Rows(m.RelevanceVectors)
	}
	return kernel.DesignMatrixRows(kernel.Rows(X), basis, m.Kernel, m.Bias), nil
}

// Predict returns the predictive mean for regression and the probability of
// class 1 for classification, one value per row of X.
func (m *FittedModel) Predict(X mat.Matrix) (*mat.VecDense, error) {
	phi, err := m.Design(X)
	if err != nil {
		return nil, err
	}
	n, _ := phi.Dims()
	out := mat.NewVecDense(n, nil)
	out.MulVec(phi, m.Mean)
	if m.Task == TaskClassification {
		for i := 0; i < n; i++ {
			out.SetVec(i, errors.Sigmoid(out.AtVec(i)))
		}
	}
	return out, nil
}

// PredictVariance returns 1/β + φᵀΣφ for every row of X. Regression only.
func (m *FittedModel) PredictVariance(X mat.Matrix) (*mat.VecDense, error) {
	if m.Task != TaskRegression {
		return nil, errors.NewValueError("FittedModel.PredictVariance", "predictive variance is only defined for regression")
	}
	phi, err := m.Design(X)
	if err != nil {
		return nil, err
	}
	n, k := phi.Dims()

	var ps mat.Dense
	ps.Mul(phi, m.Covariance)

	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v := 1 / m.Beta
		for j := 0; j < k; j++ {
			v += ps.At(i, j) * phi.At(i, j)
		}
		out.SetVec(i, v)
	}
	return out, nil
}
