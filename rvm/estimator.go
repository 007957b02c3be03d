// Package rvm implements Relevance Vector Machines: sparse Bayesian kernel
// models for regression (RVR) and binary classification (RVC).
//
// Every training point contributes one kernel basis column whose weight has
// its own Gaussian precision α. Fit maximizes the marginal likelihood over
// the precisions; columns whose α grows past a threshold are pruned and the
// training points that survive are the relevance vectors.
//
// Two update strategies are available. The default re-estimates every α at
// once per iteration. WithFast selects the sequential strategy that adds,
// re-estimates or deletes one basis at a time from its sparsity and quality
// factors.
package rvm

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/core/model"
	"github.com/YuminosukeSato/sparsebayes/kernel"
	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
	"github.com/YuminosukeSato/sparsebayes/pkg/log"
)

// minSamples is the smallest training set Fit accepts.
const minSamples = 2

// estimator is the part RVR and RVC share: configuration, identity, fitted
// state and the published model.
type estimator struct {
	name     string
	task     Task
	id       string
	settings settings
	logger   log.Logger
	state    *model.StateManager

	mu     sync.RWMutex
	fitted *FittedModel
}

func newEstimator(name string, task Task, opts []Option) *estimator {
	s := newSettings(opts)
	id := uuid.NewString()
	return &estimator{
		name:     name,
		task:     task,
		id:       id,
		settings: s,
		logger:   s.logger.With(log.ModelNameKey, name, log.EstimatorIDKey, id),
		state:    model.NewStateManager(),
	}
}

// ID returns the identifier attached to every log record of this estimator.
func (e *estimator) ID() string { return e.id }

// IsFitted reports whether Fit has completed successfully.
func (e *estimator) IsFitted() bool { return e.state.IsFitted() }

// Config returns a copy of the configuration in effect.
func (e *estimator) Config() Config {
	cfg := e.settings.cfg
	cfg.KernelParams = append([]float64(nil), cfg.KernelParams...)
	return cfg
}

// Model returns the fitted model, or nil before a successful Fit.
func (e *estimator) Model() *FittedModel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.fitted
}

// GetParams returns the hyperparameters as a flat map.
func (e *estimator) GetParams() map[string]interface{} {
	cfg := e.settings.cfg
	return map[string]interface{}{
		"kernel":                cfg.Kernel,
		"kernel_params":         append([]float64(nil), cfg.KernelParams...),
		"bias":                  cfg.Bias,
		"alpha_init":            cfg.AlphaInit,
		"alpha_threshold":       cfg.AlphaThreshold,
		"beta_init":             cfg.BetaInit,
		"fixed_beta":            cfg.FixedBeta,
		"convergence_threshold": cfg.ConvergenceThreshold,
		"max_iter":              cfg.MaxIter,
		"use_fast":              cfg.UseFast,
		"random_order":          cfg.RandomOrder,
		"random_state":          cfg.RandomState,
	}
}

func (e *estimator) strategy() string {
	if e.settings.cfg.UseFast {
		return log.StrategyFast
	}
	return log.StrategySimultaneous
}

// fit runs the whole training pipeline. A failed fit leaves the estimator
// unfitted.
func (e *estimator) fit(X, y mat.Matrix) (err error) {
	op := e.name + ".Fit"
	defer errors.Recover(&err, op)

	e.state.Reset()
	e.mu.Lock()
	e.fitted = nil
	e.mu.Unlock()

	cfg := e.settings.cfg
	if err := cfg.validateHyperparameters(); err != nil {
		return err
	}
	k, err := e.settings.resolveKernel()
	if err != nil {
		return err
	}

	t, err := trainingTargets(X, y)
	if err != nil {
		return err
	}
	if e.task == TaskClassification {
		if err := binaryTargets(t); err != nil {
			return err
		}
	}

	n, d := X.Dims()
	logger := e.logger.With(log.OperationKey, log.OperationFit, log.PhaseKey, log.PhaseTraining)
	logger.Info("fit started",
		log.SamplesKey, n,
		log.FeaturesKey, d,
		log.KernelKey, k.Name(),
		log.StrategyKey, e.strategy(),
	)
	start := time.Now()

	p := &problem{
		task:     e.task,
		phi:      kernel.DesignMatrix(X, X, k, cfg.Bias),
		t:        t,
		bias:     cfg.Bias,
		cfg:      cfg,
		logger:   logger,
		observer: e.settings.observer,
	}
	if e.task == TaskRegression {
		p.beta = initialBeta(cfg, t)
	}

	var sol *solution
	if cfg.UseFast {
		sol, err = p.fitFast()
	} else {
		sol, err = p.fitSimultaneous()
	}
	if err != nil {
		logger.Error("fit failed", err)
		return err
	}

	fm, err := p.buildModel(X, k, sol)
	if err != nil {
		logger.Error("fit produced a non-finite model", err)
		return err
	}

	if !fm.Converged {
		errors.Warn(errors.NewConvergenceWarning(e.name, fm.Iterations,
			fmt.Sprintf("max |Δlog α| did not fall below %g; returning the last model", cfg.ConvergenceThreshold)))
	}

	e.mu.Lock()
	e.fitted = fm
	e.mu.Unlock()
	e.state.SetFitted(d, n)

	elapsed := time.Since(start)
	logger.Info("fit finished",
		log.RelevanceVectorsKey, fm.NumRelevanceVectors(),
		log.IterationKey, fm.Iterations,
		log.ConvergedKey, fm.Converged,
		log.DurationMsKey, elapsed.Milliseconds(),
	)
	e.settings.observer.OnFitComplete(FitSummary{
		Task:             e.task,
		Iterations:       fm.Iterations,
		RelevanceVectors: fm.NumRelevanceVectors(),
		Converged:        fm.Converged,
		Duration:         elapsed,
	})
	return nil
}

// predictable returns the model after checking fitted state and X's width.
func (e *estimator) predictable(method string, X mat.Matrix) (*FittedModel, error) {
	if err := e.state.RequireFitted(e.name, method); err != nil {
		return nil, err
	}
	_, d := X.Dims()
	if err := e.state.RequireFeatures(e.name+"."+method, d); err != nil {
		return nil, err
	}
	return e.Model(), nil
}

// trainingTargets validates the shapes of X and y and returns y as a vector.
func trainingTargets(X, y mat.Matrix) (*mat.VecDense, error) {
	n, d := X.Dims()
	if n < minSamples {
		return nil, errors.NewInputShapeErrorFor(log.PhaseTraining, fmt.Sprintf("at least %d samples", minSamples),
			[]int{minSamples, d}, []int{n, d})
	}
	ny, cy := y.Dims()
	if cy != 1 {
		return nil, errors.NewInputShapeErrorFor(log.PhaseTraining, "targets must be a column vector", []int{n, 1}, []int{ny, cy})
	}
	if ny != n {
		return nil, errors.NewInputShapeError(log.PhaseTraining, []int{n, 1}, []int{ny, cy})
	}
	if err := errors.CheckMatrix("training_inputs", X, 0); err != nil {
		return nil, errors.NewValueError("Fit", "inputs contain NaN or Inf")
	}

	t := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v := y.At(i, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.NewValueError("Fit", fmt.Sprintf("target %d is not finite", i))
		}
		t.SetVec(i, v)
	}
	return t, nil
}

func binaryTargets(t *mat.VecDense) error {
	for i := 0; i < t.Len(); i++ {
		if v := t.AtVec(i); v != 0 && v != 1 {
			return errors.NewValidationError("y", fmt.Sprintf("classification target %d must be 0 or 1", i), v)
		}
	}
	return nil
}

func toMatrix(v *mat.VecDense) mat.Matrix {
	return mat.NewDense(v.Len(), 1, v.RawVector().Data)
}
