// Package model provides the estimator interfaces shared by the sparse
// Bayesian estimators and the StateManager that tracks their fitted state.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Estimator is a model that can be fitted and used for prediction.
type Estimator interface {
	Fitter
	Predictor
	IsFitted() bool
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Estimator
	Scorer

	// PredictWithVariance returns the predictive mean and variance per row.
	PredictWithVariance(X mat.Matrix) (mean, variance *mat.VecDense, err error)
}

// Classifier combines interfaces for binary classification models.
// Predict returns the probability of class 1.
type Classifier interface {
	Estimator
	Scorer

	// PredictLabels returns hard {0,1} labels.
	PredictLabels(X mat.Matrix) (mat.Matrix, error)
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}
