package rvm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/core/model"
	"github.com/YuminosukeSato/sparsebayes/metrics"
	"github.com/YuminosukeSato/sparsebayes/pkg/log"
)

// RVC is the relevance vector classifier for targets in {0, 1}. The weight
// posterior is the Laplace approximation at the mode of the penalized
// logistic log-likelihood.
type RVC struct {
	*estimator
}

var (
	_ model.Classifier      = (*RVC)(nil)
	_ model.ParameterGetter = (*RVC)(nil)
)

// NewRVC creates an unfitted classifier.
func NewRVC(opts ...Option) *RVC {
	return &RVC{estimator: newEstimator("RVC", TaskClassification, opts)}
}

// Fit learns the sparse expansion from X (N×D) and binary y (N×1). A failure
// of the inner mode search is reported as errors.ModeFindingError, distinct
// from the NumericalInstabilityError of the outer loop.
func (c *RVC) Fit(X, y mat.Matrix) error {
	return c.fit(X, y)
}

// Predict returns P(y=1 | x) as an N×1 matrix.
func (c *RVC) Predict(X mat.Matrix) (mat.Matrix, error) {
	fm, err := c.predictable("Predict", X)
	if err != nil {
		return nil, err
	}
	prob, err := fm.Predict(X)
	if err != nil {
		return nil, err
	}
	return toMatrix(prob), nil
}

// PredictLabels thresholds the class-1 probability at 0.5.
func (c *RVC) PredictLabels(X mat.Matrix) (mat.Matrix, error) {
	fm, err := c.predictable("PredictLabels", X)
	if err != nil {
		return nil, err
	}
	prob, err := fm.Predict(X)
	if err != nil {
		return nil, err
	}
	return toMatrix(labels(prob)), nil
}

// Score returns the accuracy of PredictLabels on X against y.
func (c *RVC) Score(X, y mat.Matrix) (float64, error) {
	fm, err := c.predictable("Score", X)
	if err != nil {
		return 0, err
	}
	prob, err := fm.Predict(X)
	if err != nil {
		return 0, err
	}
	acc, err := metrics.Accuracy(columnVector(y), labels(prob))
	if err != nil {
		return 0, err
	}
	c.logger.Debug("scored", log.OperationKey, log.OperationScore, log.AccuracyKey, acc)
	return acc, nil
}

func labels(prob *mat.VecDense) *mat.VecDense {
	out := mat.NewVecDense(prob.Len(), nil)
	for i := 0; i < prob.Len(); i++ {
		if prob.AtVec(i) > 0.5 {
			out.SetVec(i, 1)
		}
	}
	return out
}
