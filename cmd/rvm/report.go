package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sparsebayes/pkg/log"
	"github.com/YuminosukeSato/sparsebayes/pkg/telemetry"
	"github.com/YuminosukeSato/sparsebayes/rvm"
)

type score struct {
	name  string
	value float64
}

func printSummary(w io.Writer, name string, cfg rvm.Config, fm *rvm.FittedModel, n int) {
	strategy := log.StrategySimultaneous
	if cfg.UseFast {
		strategy = log.StrategyFast
	}
	fmt.Fprintf(w, "%s  kernel=%s  bias=%t  strategy=%s\n", name, kernelLabel(fm), fm.Bias, strategy)
	fmt.Fprintf(w, "iterations: %d  converged: %t\n", fm.Iterations, fm.Converged)
	fmt.Fprintf(w, "relevance vectors: %d of %d\n", fm.NumRelevanceVectors(), n)
	if fm.Task == rvm.TaskRegression {
		fmt.Fprintf(w, "noise precision: %.6g\n", fm.Beta)
	}
}

func kernelLabel(fm *rvm.FittedModel) string {
	params := fm.Kernel.Params()
	if len(params) == 0 {
		return fm.Kernel.Name()
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = strconv.FormatFloat(p, 'g', -1, 64)
	}
	return fm.Kernel.Name() + "(" + strings.Join(parts, ",") + ")"
}

// printRelevanceVectors lists every retained basis with its weight and
// precision, the bias first. Inputs are read from the training matrix X so
// that standardized fits still show the original coordinates.
func printRelevanceVectors(w io.Writer, fm *rvm.FittedModel, X, targets mat.Matrix) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "index\tx\ttarget\tweight\talpha")
	offset := 0
	if fm.Bias {
		fmt.Fprintf(tw, "bias\t-\t-\t%.6g\t%.6g\n", fm.Mean.AtVec(0), fm.Alpha[0])
		offset = 1
	}
	for r, idx := range fm.RelevanceIndices {
		fmt.Fprintf(tw, "%d\t%s\t%g\t%.6g\t%.6g\n",
			idx, formatRow(mat.Row(nil, idx, X)), targets.At(idx, 0), fm.Mean.AtVec(offset+r), fm.Alpha[offset+r])
	}
}

func formatRow(row []float64) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = strconv.FormatFloat(v, 'f', 4, 64)
	}
	return strings.Join(parts, ",")
}

func printScores(w io.Writer, title string, scores []score) {
	fmt.Fprintln(w, title+":")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range scores {
		fmt.Fprintf(tw, "  %s\t%.6g\n", s.name, s.value)
	}
	tw.Flush()
}

// writeTelemetry saves the collector in text format when --metrics is set and
// prints its counters and gauges.
func writeTelemetry(w io.Writer, opts *options, c *telemetry.FitCollector, logger log.Logger) error {
	if opts.metricsPath != "" {
		if err := prometheus.WriteToTextfile(opts.metricsPath, c.Registry()); err != nil {
			return err
		}
		logger.Info("metrics written", "path", opts.metricsPath)
	}

	families, err := c.Registry().Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "telemetry:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v, ok := sampleValue(mf.GetType(), m)
			if !ok {
				continue
			}
			fmt.Fprintf(tw, "  %s%s\t%g\n", mf.GetName(), labelString(m), v)
		}
	}
	return nil
}

// sampleValue returns the value of counters and gauges and the observation
// count of histograms.
func sampleValue(t dto.MetricType, m *dto.Metric) (float64, bool) {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue(), true
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue(), true
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount()), true
	}
	return 0, false
}

func labelString(m *dto.Metric) string {
	pairs := m.GetLabel()
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.GetName() + "=" + p.GetValue()
	}
	slices.Sort(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
