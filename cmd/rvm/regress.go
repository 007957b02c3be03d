package main

import (
	"math/rand/v2"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/datasets"
	"github.com/YuminosukeSato/sparsebayes/metrics"
	"github.com/YuminosukeSato/sparsebayes/pkg/log"
	"github.com/YuminosukeSato/sparsebayes/pkg/telemetry"
	"github.com/YuminosukeSato/sparsebayes/rvm"
)

type regressFlags struct {
	n          int
	noise      float64
	dataSeed   uint64
	testPoints int
}

func newRegressCmd(opts *options) *cobra.Command {
	var f regressFlags
	cmd := &cobra.Command{
		Use:   "regress",
		Short: "Fit an RVR to sin(x)/x on [-10, 10]",
		Long: `Fit a relevance vector regressor to the sinc function, optionally with
Gaussian target noise, and score the predictive mean on a dense noise-free grid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRegress(cmd, opts, f)
		},
	}
	cmd.Flags().IntVar(&f.n, "n", 100, "Training points, equally spaced")
	cmd.Flags().Float64Var(&f.noise, "noise", 0, "Standard deviation of the target noise; 0 is noise free")
	cmd.Flags().Uint64Var(&f.dataSeed, "data-seed", 0, "Seed of the target noise")
	cmd.Flags().IntVar(&f.testPoints, "test-points", 200, "Points of the evaluation grid")
	return cmd
}

func runRegress(cmd *cobra.Command, opts *options, f regressFlags) error {
	cfg, err := resolveConfig(opts, cmd.Flags())
	if err != nil {
		return err
	}
	logger := log.GetLogger().With(log.ComponentKey, "cli")

	var X, y *mat.Dense
	if f.noise > 0 {
		X, y, err = datasets.SincGaussianNoise(f.n, f.noise, rand.NewPCG(f.dataSeed, f.dataSeed))
	} else {
		X, y, err = datasets.SincNoiseFree(f.n)
	}
	if err != nil {
		return err
	}

	collector := telemetry.NewFitCollector()
	r := rvm.NewRVR(rvm.WithConfig(cfg), rvm.WithObserver(collector))
	if err := r.Fit(X, y); err != nil {
		return err
	}
	fm := r.Model()

	Xt, yt, err := datasets.SincNoiseFree(f.testPoints)
	if err != nil {
		return err
	}
	mean, variance, err := r.PredictWithVariance(Xt)
	if err != nil {
		return err
	}
	scores, err := regressionScores(mat.NewVecDense(f.testPoints, mat.Col(nil, 0, yt)), mean)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSummary(out, "RVR", cfg, fm, f.n)
	printRelevanceVectors(out, fm, X, y)
	printScores(out, "held-out scores", scores)

	if opts.plotPath != "" {
		if err := plotRegression(opts.plotPath, X, y, Xt, yt, mean, variance, fm); err != nil {
			return err
		}
		logger.Info("plot written", "path", opts.plotPath)
	}
	return writeTelemetry(out, opts, collector, logger)
}

func regressionScores(truth, pred *mat.VecDense) ([]score, error) {
	fns := []struct {
		name string
		fn   func(yTrue, yPred *mat.VecDense) (float64, error)
	}{
		{"mse", metrics.MSE},
		{"rmse", metrics.RMSE},
		{"mae", metrics.MAE},
		{"r2", metrics.R2Score},
		{"explained_variance", metrics.ExplainedVarianceScore},
	}
	out := make([]score, 0, len(fns))
	for _, s := range fns {
		v, err := s.fn(truth, pred)
		if err != nil {
			return nil, err
		}
		out = append(out, score{name: s.name, value: v})
	}
	return out, nil
}
