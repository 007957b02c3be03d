// Package metrics scores the predictions of the relevance vector machines:
// error and explained-variance measures for the regressor and accuracy,
// log loss and ROC area for the classifier's probabilities.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
)

// residuals returns yTrue - yPred after checking the pair.
func residuals(op string, yTrue, yPred *mat.VecDense) ([]float64, error) {
	n, err := checkPair(op, yTrue, yPred)
	if err != nil {
		return nil, err
	}
	return floats.SubTo(make([]float64, n), vecData(yTrue), vecData(yPred)), nil
}

// MSE is the mean squared error.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	r, err := residuals("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Dot(r, r) / float64(len(r)), nil
}

// RMSE is the square root of MSE, in the units of the targets.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE is the mean absolute error.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	r, err := residuals("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Norm(r, 1) / float64(len(r)), nil
}

// R2Score is 1 - RSS/TSS. Constant targets leave it undefined and return an
// error.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	r, err := residuals("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	tss := stat.PopVariance(vecData(yTrue), nil) * float64(len(r))
	if tss == 0 {
		return 0, errors.NewValueError("R2Score", "targets have no variance")
	}
	return 1 - floats.Dot(r, r)/tss, nil
}

// ExplainedVarianceScore is 1 - Var(yTrue - yPred)/Var(yTrue). Unlike R² it
// ignores a constant offset of the predictions.
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	r, err := residuals("ExplainedVarianceScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	v := stat.PopVariance(vecData(yTrue), nil)
	if v == 0 {
		return 0, errors.NewValueError("ExplainedVarianceScore", "targets have no variance")
	}
	return 1 - stat.PopVariance(r, nil)/v, nil
}

func vecData(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
