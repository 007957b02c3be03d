// Command rvm fits relevance vector machines on the synthetic problems of the
// datasets package and reports the relevance vectors, the hyperparameters
// and the held-out metrics.
//
//	rvm regress --n 100 --plot sinc.png
//	rvm classify --fast --standardize --metrics rvc.prom
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/YuminosukeSato/sparsebayes/pkg/errors"
	"github.com/YuminosukeSato/sparsebayes/pkg/log"
	"github.com/YuminosukeSato/sparsebayes/rvm"
)

const appName = "rvm"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the flags shared by every subcommand.
type options struct {
	configPath  string
	logLevel    string
	jsonLogs    bool
	metricsPath string
	plotPath    string

	kernel       string
	kernelParams []float64
	bias         bool
	fast         bool
	seed         uint64
	maxIter      int
	threshold    float64
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          appName,
		Short:        "Sparse Bayesian kernel regression and classification",
		Long:         "Fit relevance vector machines on synthetic data and inspect the sparse expansion they retain.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(opts, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	fs := root.PersistentFlags()
	fs.StringVar(&opts.configPath, "config", "", "YAML file with fit settings; flags override it")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	fs.BoolVar(&opts.jsonLogs, "json-logs", false, "Emit JSON logs even on a terminal")
	fs.StringVar(&opts.metricsPath, "metrics", "", "Write fit telemetry in Prometheus text format to this file")
	fs.StringVar(&opts.plotPath, "plot", "", "Save a PNG plot of the fit to this file")
	fs.StringVar(&opts.kernel, "kernel", "", "Kernel name (linear|linear_spline|polynomial|rbf|cosine|log)")
	fs.Float64SliceVar(&opts.kernelParams, "kernel-param", nil, "Kernel parameter: rbf sigma or polynomial degree")
	fs.BoolVar(&opts.bias, "bias", true, "Prepend a bias column to the design matrix")
	fs.BoolVar(&opts.fast, "fast", false, "Use the sequential add/delete/re-estimate strategy")
	fs.Uint64Var(&opts.seed, "seed", 0, "Visit bases in a random order drawn from this seed (fast strategy)")
	fs.IntVar(&opts.maxIter, "max-iter", 0, "Maximum outer iterations")
	fs.Float64Var(&opts.threshold, "convergence-threshold", 0, "Tolerance on max |Δ log α|")

	root.AddCommand(newRegressCmd(opts), newClassifyCmd(opts))
	return root
}

// setupLogging installs a console logger on terminals and a JSON logger
// otherwise.
func setupLogging(opts *options, stderr io.Writer) error {
	level, err := log.ToLogLevel(opts.logLevel)
	if err != nil {
		return err
	}
	if f, ok := stderr.(*os.File); ok && !opts.jsonLogs && term.IsTerminal(int(f.Fd())) {
		log.SetLogger(log.NewConsoleLogger(stderr, level))
		return nil
	}
	log.SetLogger(log.NewJSONLogger(stderr, level))
	return nil
}

// resolveConfig starts from the config file, or the defaults, and applies the
// flags the user actually set.
func resolveConfig(opts *options, fs *pflag.FlagSet) (rvm.Config, error) {
	cfg := rvm.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := rvm.LoadConfig(opts.configPath)
		if err != nil {
			return rvm.Config{}, err
		}
		cfg = loaded
	}

	if fs.Changed("kernel") {
		cfg.Kernel = opts.kernel
		cfg.KernelParams = nil
	}
	if fs.Changed("kernel-param") {
		cfg.KernelParams = append([]float64(nil), opts.kernelParams...)
	}
	if fs.Changed("bias") {
		cfg.Bias = opts.bias
	}
	if fs.Changed("fast") {
		cfg.UseFast = opts.fast
	}
	if fs.Changed("seed") {
		cfg.RandomOrder = true
		cfg.RandomState = opts.seed
	}
	if fs.Changed("max-iter") {
		cfg.MaxIter = opts.maxIter
	}
	if fs.Changed("convergence-threshold") {
		cfg.ConvergenceThreshold = opts.threshold
	}

	if err := cfg.Validate(); err != nil {
		return rvm.Config{}, errors.Wrap(err, "invalid settings")
	}
	return cfg, nil
}
