package rvm

import (
	"github.com/YuminosukeSato/sparsebayes/kernel"
	"github.com/YuminosukeSato/sparsebayes/pkg/log"
)

// settings is what options act on. An explicit kernel takes precedence over
// the kernel named in the config.
type settings struct {
	cfg      Config
	kernel   kernel.Kernel
	logger   log.Logger
	observer Observer
}

func newSettings(opts []Option) settings {
	s := settings{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = log.GetLogger()
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	return s
}

func (s *settings) resolveKernel() (kernel.Kernel, error) {
	if s.kernel != nil {
		return s.kernel, nil
	}
	return kernel.New(s.cfg.Kernel, s.cfg.KernelParams...)
}

// Option configures an RVR or RVC.
type Option func(*settings)

// WithConfig replaces the whole configuration. Options listed after it still
// apply on top.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.cfg = cfg
	}
}

// WithKernel sets an already constructed kernel.
func WithKernel(k kernel.Kernel) Option {
	return func(s *settings) {
		if k == nil {
			return
		}
		s.kernel = k
		s.cfg.Kernel = k.Name()
		s.cfg.KernelParams = k.Params()
	}
}

// WithKernelName selects the kernel by name; it is resolved when Fit runs.
func WithKernelName(name string, params ...float64) Option {
	return func(s *settings) {
		s.kernel = nil
		s.cfg.Kernel = name
		s.cfg.KernelParams = params
	}
}

// WithBias sets whether a bias column is prepended to the design matrix
func WithBias(bias bool) Option {
	return func(s *settings) {
		s.cfg.Bias = bias
	}
}

// WithAlphaInit sets the initial precision of every basis
func WithAlphaInit(alpha float64) Option {
	return func(s *settings) {
		s.cfg.AlphaInit = alpha
	}
}

// WithAlphaThreshold sets the precision at which a basis is pruned
func WithAlphaThreshold(threshold float64) Option {
	return func(s *settings) {
		s.cfg.AlphaThreshold = threshold
	}
}

// WithBetaInit sets the initial noise precision (regression only)
func WithBetaInit(beta float64) Option {
	return func(s *settings) {
		s.cfg.BetaInit = beta
	}
}

// WithBetaBounds clamps the re-estimated noise precision
func WithBetaBounds(lo, hi float64) Option {
	return func(s *settings) {
		s.cfg.BetaMin = lo
		s.cfg.BetaMax = hi
	}
}

// WithFixedBeta disables re-estimation of the noise precision
func WithFixedBeta(fixed bool) Option {
	return func(s *settings) {
		s.cfg.FixedBeta = fixed
	}
}

// WithConvergenceThreshold sets the tolerance on max |Δ log α|
func WithConvergenceThreshold(threshold float64) Option {
	return func(s *settings) {
		s.cfg.ConvergenceThreshold = threshold
	}
}

// WithMaxIter sets the outer iteration cap (passes, for the fast variant)
func WithMaxIter(n int) Option {
	return func(s *settings) {
		s.cfg.MaxIter = n
	}
}

// WithInnerMaxIter sets the Newton step cap of the classifier's mode finding
func WithInnerMaxIter(n int) Option {
	return func(s *settings) {
		s.cfg.InnerMaxIter = n
	}
}

// WithFast selects the sequential add/delete/re-estimate strategy
func WithFast(fast bool) Option {
	return func(s *settings) {
		s.cfg.UseFast = fast
	}
}

// WithRandomOrder makes the fast variant visit bases in a permutation drawn
// from a source seeded with seed.
func WithRandomOrder(seed uint64) Option {
	return func(s *settings) {
		s.cfg.RandomOrder = true
		s.cfg.RandomState = seed
	}
}

// WithLogger sets the logger. Defaults to log.GetLogger().
func WithLogger(logger log.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithObserver registers a hook that receives per-iteration statistics.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		s.observer = o
	}
}
