package rvm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/core/model"
	"github.com/YuminosukeSato/sparsebayes/metrics"
	"github.com/YuminosukeSato/sparsebayes/pkg/log"
)

// RVR is the relevance vector regressor.
//
//	r := rvm.NewRVR(rvm.WithKernelName("rbf", 2))
//	if err := r.Fit(X, y); err != nil { ... }
//	mean, variance, err := r.PredictWithVariance(Xtest)
type RVR struct {
	*estimator
}

var (
	_ model.Regressor       = (*RVR)(nil)
	_ model.ParameterGetter = (*RVR)(nil)
)

// NewRVR creates an unfitted regressor.
func NewRVR(opts ...Option) *RVR {
	return &RVR{estimator: newEstimator("RVR", TaskRegression, opts)}
}

// Fit learns the sparse expansion from X (N×D) and y (N×1).
//
// Failing to meet the convergence threshold within MaxIter is not an error:
// the last model is kept, Model().Converged is false and a
// ConvergenceWarning is emitted through errors.Warn.
func (r *RVR) Fit(X, y mat.Matrix) error {
	return r.fit(X, y)
}

// Predict returns the predictive mean as an N×1 matrix.
func (r *RVR) Predict(X mat.Matrix) (mat.Matrix, error) {
	fm, err := r.predictable("Predict", X)
	if err != nil {
		return nil, err
	}
	mean, err := fm.Predict(X)
	if err != nil {
		return nil, err
	}
	return toMatrix(mean), nil
}

// PredictWithVariance returns the predictive mean and variance per row.
func (r *RVR) PredictWithVariance(X mat.Matrix) (mean, variance *mat.VecDense, err error) {
	fm, err := r.predictable("PredictWithVariance", X)
	if err != nil {
		return nil, nil, err
	}
	if mean, err = fm.Predict(X); err != nil {
		return nil, nil, err
	}
	if variance, err = fm.PredictVariance(X); err != nil {
		return nil, nil, err
	}
	return mean, variance, nil
}

// Score returns the R² of the predictions on X against y.
func (r *RVR) Score(X, y mat.Matrix) (float64, error) {
	fm, err := r.predictable("Score", X)
	if err != nil {
		return 0, err
	}
	pred, err := fm.Predict(X)
	if err != nil {
		return 0, err
	}
	score, err := metrics.R2Score(columnVector(y), pred)
	if err != nil {
		return 0, err
	}
	r.logger.Debug("scored", log.OperationKey, log.OperationScore, log.R2ScoreKey, score)
	return score, nil
}

func columnVector(y mat.Matrix) *mat.VecDense {
	n, _ := y.Dims()
	v := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v.SetVec(i, y.At(i, 0))
	}
	return v
}
