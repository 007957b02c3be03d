package main

import (
	"math/rand/v2"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/datasets"
	"github.com/YuminosukeSato/sparsebayes/metrics"
	"github.com/YuminosukeSato/sparsebayes/pkg/log"
	"github.com/YuminosukeSato/sparsebayes/pkg/telemetry"
	"github.com/YuminosukeSato/sparsebayes/preprocessing"
	"github.com/YuminosukeSato/sparsebayes/rvm"
)

type classifyFlags struct {
	n           int
	testSize    float64
	weights     []float64
	dataSeed    uint64
	standardize bool
}

func newClassifyCmd(opts *options) *cobra.Command {
	var f classifyFlags
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Fit an RVC to linearly separable 2D data",
		Long: `Fit a relevance vector classifier to points drawn uniformly from [-1, 1]^d
and labelled by the sign of w·x. Without --kernel or --config the linear
kernel is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClassify(cmd, opts, f)
		},
	}
	cmd.Flags().IntVar(&f.n, "n", 300, "Points drawn before the train/test split")
	cmd.Flags().Float64Var(&f.testSize, "test-size", 1.0/3, "Fraction of the points held out")
	cmd.Flags().Float64SliceVar(&f.weights, "w", []float64{1, 1}, "Normal of the separating hyperplane")
	cmd.Flags().Uint64Var(&f.dataSeed, "data-seed", 0, "Seed of the data and of the split")
	cmd.Flags().BoolVar(&f.standardize, "standardize", false, "Scale features to zero mean and unit variance before fitting")
	return cmd
}

func runClassify(cmd *cobra.Command, opts *options, f classifyFlags) error {
	cfg, err := resolveConfig(opts, cmd.Flags())
	if err != nil {
		return err
	}
	if opts.configPath == "" && !cmd.Flags().Changed("kernel") {
		cfg.Kernel, cfg.KernelParams = "linear", nil
	}
	logger := log.GetLogger().With(log.ComponentKey, "cli")

	X, y, err := datasets.SimpleClassData(f.n, f.weights, rand.NewPCG(f.dataSeed, f.dataSeed))
	if err != nil {
		return err
	}
	XTrain, XTest, yTrain, yTest, err := datasets.TrainTestSplit(X, y, f.testSize, rand.NewPCG(f.dataSeed, f.dataSeed+1))
	if err != nil {
		return err
	}
	nTrain, _ := XTrain.Dims()

	fitX, evalX := mat.Matrix(XTrain), mat.Matrix(XTest)
	if f.standardize {
		scaler := preprocessing.NewStandardScalerDefault()
		if fitX, err = scaler.FitTransform(XTrain); err != nil {
			return err
		}
		if evalX, err = scaler.Transform(XTest); err != nil {
			return err
		}
		logger.Info("features standardized", "mean", scaler.Mean, "scale", scaler.Scale)
	}

	collector := telemetry.NewFitCollector()
	c := rvm.NewRVC(rvm.WithConfig(cfg), rvm.WithObserver(collector))
	if err := c.Fit(fitX, yTrain); err != nil {
		return err
	}
	fm := c.Model()

	prob, err := c.Predict(evalX)
	if err != nil {
		return err
	}
	labels, err := c.PredictLabels(evalX)
	if err != nil {
		return err
	}
	nTest, _ := XTest.Dims()
	scores, err := classificationScores(
		mat.NewVecDense(nTest, mat.Col(nil, 0, yTest)),
		mat.NewVecDense(nTest, mat.Col(nil, 0, prob)),
		mat.NewVecDense(nTest, mat.Col(nil, 0, labels)),
	)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSummary(out, "RVC", cfg, fm, nTrain)
	printRelevanceVectors(out, fm, XTrain, yTrain)
	printScores(out, "held-out scores", scores)

	if opts.plotPath != "" {
		if err := plotClassification(opts.plotPath, XTest, prob, XTrain, fm); err != nil {
			return err
		}
		logger.Info("plot written", "path", opts.plotPath)
	}
	return writeTelemetry(out, opts, collector, logger)
}

func classificationScores(truth, prob, labels *mat.VecDense) ([]score, error) {
	acc, err := metrics.Accuracy(truth, labels)
	if err != nil {
		return nil, err
	}
	logLoss, err := metrics.BinaryLogLoss(truth, prob)
	if err != nil {
		return nil, err
	}
	auc, err := metrics.AUC(truth, prob)
	if err != nil {
		return nil, err
	}
	return []score{
		{name: "accuracy", value: acc},
		{name: "error_rate", value: 1 - acc},
		{name: "log_loss", value: logLoss},
		{name: "auc", value: auc},
	}, nil
}
