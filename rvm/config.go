package rvm

import (
	"bytes"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/sparsebayes/kernel"
	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
)

// Config holds every hyperparameter of a fit. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// Kernel names the basis kernel, see kernel.New.
	Kernel       string    `yaml:"kernel"`
	KernelParams []float64 `yaml:"kernel_params,omitempty"`
	// Bias prepends a column of ones to the design matrix.
	Bias bool `yaml:"bias"`

	AlphaInit      float64 `yaml:"alpha_init"`
	AlphaThreshold float64 `yaml:"alpha_threshold"`

	// BetaInit is the initial noise precision for regression. Zero means
	// 100/var(t).
	BetaInit  float64 `yaml:"beta_init"`
	BetaMin   float64 `yaml:"beta_min"`
	BetaMax   float64 `yaml:"beta_max"`
	FixedBeta bool    `yaml:"fixed_beta"`

	ConvergenceThreshold float64 `yaml:"convergence_threshold"`
	MaxIter              int     `yaml:"max_iter"`

	// Inner mode-finding loop of the classifier.
	InnerMaxIter   int     `yaml:"inner_max_iter"`
	InnerTolerance float64 `yaml:"inner_tolerance"`

	// UseFast selects the sequential add/delete/re-estimate strategy.
	UseFast     bool   `yaml:"use_fast"`
	RandomOrder bool   `yaml:"random_order"`
	RandomState uint64 `yaml:"random_state"`
}

// DefaultConfig returns the configuration used when no option overrides it.
func DefaultConfig() Config {
	return Config{
		Kernel:               "rbf",
		KernelParams:         []float64{kernel.DefaultSigma},
		Bias:                 true,
		AlphaInit:            1,
		AlphaThreshold:       1e9,
		BetaInit:             0,
		BetaMin:              1e-6,
		BetaMax:              1e6,
		ConvergenceThreshold: 1e-3,
		MaxIter:              1000,
		InnerMaxIter:         50,
		InnerTolerance:       1e-6,
	}
}

// LoadConfig reads a YAML file. Keys missing from the file keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config file %s", path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field and returns a ValidationError for the first
// invalid one.
func (c Config) Validate() error {
	if _, err := kernel.New(c.Kernel, c.KernelParams...); err != nil {
		return err
	}
	return c.validateHyperparameters()
}

func (c Config) validateHyperparameters() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"alpha_init", c.AlphaInit},
		{"alpha_threshold", c.AlphaThreshold},
		{"beta_min", c.BetaMin},
		{"beta_max", c.BetaMax},
		{"convergence_threshold", c.ConvergenceThreshold},
		{"inner_tolerance", c.InnerTolerance},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return errors.NewValidationError(p.name, "must be a positive finite number", p.value)
		}
	}

	if c.AlphaThreshold <= c.AlphaInit {
		return errors.NewValidationError("alpha_threshold", "must exceed alpha_init", c.AlphaThreshold)
	}
	if !(c.BetaInit >= 0) || math.IsInf(c.BetaInit, 0) {
		return errors.NewValidationError("beta_init", "must be zero or a positive finite number", c.BetaInit)
	}
	if c.BetaMin > c.BetaMax {
		return errors.NewValidationError("beta_min", "must not exceed beta_max", c.BetaMin)
	}
	if c.MaxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", c.MaxIter)
	}
	if c.InnerMaxIter < 1 {
		return errors.NewValidationError("inner_max_iter", "must be at least 1", c.InnerMaxIter)
	}
	return nil
}
