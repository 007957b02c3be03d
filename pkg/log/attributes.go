// Package log defines standard attribute keys for sparse Bayesian learning.
//
// Keys follow a hierarchical naming convention ("model.name", "data.samples",
// "rvm.retained_bases") so that fit traces can be filtered by prefix.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type: "RVR" or "RVC".
	ModelNameKey = "model.name"

	// EstimatorIDKey is the per-instance uuid assigned at construction.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component emitted the record.
	// Examples: "rvm", "kernel", "cli"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"

	// KernelKey names the kernel binding, e.g. "rbf".
	KernelKey = "model.kernel"

	// StrategyKey names the hyperparameter update strategy: "simultaneous" or "fast".
	StrategyKey = "model.strategy"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"
)

// Performance and Training Progress
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy in [0, 1].
	AccuracyKey = "metrics.accuracy"

	// R2ScoreKey records R² coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"

	// IterationKey records the outer iteration (or pass, for the fast variant).
	IterationKey = "training.iteration"

	// ConvergedKey records whether the convergence criterion was met.
	ConvergedKey = "training.converged"
)

// Sparse Bayesian learning state
const (
	// RetainedBasesKey is the number of basis columns still in the model.
	RetainedBasesKey = "rvm.retained_bases"

	// PrunedBasesKey is the number of basis columns removed in one iteration.
	PrunedBasesKey = "rvm.pruned_bases"

	// RelevanceVectorsKey is the number of relevance vectors after fitting.
	RelevanceVectorsKey = "rvm.relevance_vectors"

	// MaxDeltaLogAlphaKey is max |Δ log α| over retained bases in one iteration.
	MaxDeltaLogAlphaKey = "rvm.max_delta_log_alpha"

	// BetaKey is the noise precision (regression only).
	BetaKey = "rvm.beta"

	// BasisIndexKey is the training index of the basis an event refers to.
	BasisIndexKey = "rvm.basis_index"

	// BasisActionKey is "add", "reestimate" or "delete" in the fast variant.
	BasisActionKey = "rvm.basis_action"

	// NewtonStepsKey is the number of inner mode-finding steps.
	NewtonStepsKey = "rvm.newton_steps"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// SuggestionKey provides helpful suggestions for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Configuration
const (
	// HyperParamsKey contains model hyperparameters as a structured object.
	HyperParamsKey = "model.hyperparams"

	// RandomSeedKey records the seed of the basis visitation order.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	PhaseTraining  = "training"
	PhaseInference = "inference"

	StrategySimultaneous = "simultaneous"
	StrategyFast         = "fast"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
	ErrorModeFinding       = "MODE_FINDING_FAILURE"
	ErrorDegenerateModel   = "DEGENERATE_MODEL"
)
