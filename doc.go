// Package sparsebayes is a Go implementation of the Relevance Vector Machine,
// a sparse Bayesian kernel model for regression and binary classification.
//
// An RVM places one kernel basis function on every training point and gives
// each weight its own Gaussian prior precision. Maximizing the marginal
// likelihood drives most precisions to infinity; their bases are pruned and
// the few training points that remain are the relevance vectors. Predictions
// come with a full posterior, so regression also reports a predictive
// variance.
//
// # Quick Start
//
//	import (
//	    "github.com/YuminosukeSato/sparsebayes/datasets"
//	    "github.com/YuminosukeSato/sparsebayes/rvm"
//	)
//
//	X, y, _ := datasets.SincNoiseFree(100)
//	r := rvm.NewRVR(rvm.WithKernelName("rbf", 2))
//	if err := r.Fit(X, y); err != nil {
//	    log.Fatal(err)
//	}
//	mean, variance, err := r.PredictWithVariance(Xtest)
//
// # Packages
//
//   - rvm: RVR and RVC estimators, configuration and model persistence
//   - kernel: kernel functions and the design matrix builder
//   - datasets: the sinc and linearly separable benchmark problems
//   - metrics: regression and classification scores
//   - preprocessing: feature standardization
//   - core/model: estimator interfaces and fitted state management
//   - core/parallel: row-parallel helpers used to build large design matrices
//   - pkg/errors: typed errors and warnings with stack traces
//   - pkg/log: structured logging on zerolog
//   - pkg/telemetry: Prometheus collectors fed by fit observers
//
// The rvm command in cmd/rvm fits both estimators on synthetic data from the
// command line.
package sparsebayes
