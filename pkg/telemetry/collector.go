// Package telemetry exports the progress of relevance vector machine fits as
// Prometheus metrics.
//
//	fc := telemetry.NewFitCollector()
//	r := rvm.NewRVR(rvm.WithObserver(fc))
//	_ = r.Fit(X, y)
//	_ = prometheus.WriteToTextfile("rvm.prom", fc.Registry())
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/YuminosukeSato/sparsebayes/rvm"
)

const namespace = "sparsebayes"

// FitCollector implements rvm.Observer. Every metric is labelled with the
// task ("regression" or "classification") and lives in the collector's own
// registry, so several collectors never clash.
type FitCollector struct {
	registry *prometheus.Registry

	Iterations       *prometheus.CounterVec
	Retained         *prometheus.GaugeVec
	Pruned           *prometheus.CounterVec
	MaxDeltaLogAlpha *prometheus.GaugeVec
	Beta             *prometheus.GaugeVec
	NewtonSteps      *prometheus.HistogramVec
	BasisEvents      *prometheus.CounterVec

	Fits             *prometheus.CounterVec
	RelevanceVectors *prometheus.GaugeVec
	FitDuration      *prometheus.HistogramVec
}

var _ rvm.Observer = (*FitCollector)(nil)

// NewFitCollector creates the metrics and registers them in a fresh registry.
func NewFitCollector() *FitCollector {
	c := &FitCollector{
		registry: prometheus.NewRegistry(),

		Iterations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "iterations_total",
				Help:      "Outer iterations (passes, for the fast variant) completed",
			},
			[]string{"task"},
		),
		Retained: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "retained_bases",
				Help:      "Basis columns in the model after the latest iteration, bias included",
			},
			[]string{"task"},
		),
		Pruned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pruned_bases_total",
				Help:      "Basis columns removed from the model",
			},
			[]string{"task"},
		),
		MaxDeltaLogAlpha: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "max_delta_log_alpha",
				Help:      "Largest |Δ log α| of the latest iteration",
			},
			[]string{"task"},
		),
		Beta: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "noise_precision",
				Help:      "Noise precision β after the latest iteration",
			},
			[]string{"task"},
		),
		NewtonSteps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "newton_steps",
				Help:      "Newton steps per mode search of the classifier",
				Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"task"},
		),
		BasisEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "basis_events_total",
				Help:      "Add, re-estimate and delete decisions of the fast variant",
			},
			[]string{"task", "action"},
		),
		Fits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fits_total",
				Help:      "Completed fits by convergence outcome",
			},
			[]string{"task", "converged"},
		),
		RelevanceVectors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "relevance_vectors",
				Help:      "Relevance vectors retained by the latest fit",
			},
			[]string{"task"},
		),
		FitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fit_duration_seconds",
				Help:      "Wall time of a fit",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"task"},
		),
	}

	c.registry.MustRegister(
		c.Iterations,
		c.Retained,
		c.Pruned,
		c.MaxDeltaLogAlpha,
		c.Beta,
		c.NewtonSteps,
		c.BasisEvents,
		c.Fits,
		c.RelevanceVectors,
		c.FitDuration,
	)
	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *FitCollector) Registry() *prometheus.Registry {
	return c.registry
}

// OnIteration implements rvm.Observer.
func (c *FitCollector) OnIteration(s rvm.IterationStats) {
	task := s.Task.String()
	c.Iterations.WithLabelValues(task).Inc()
	c.Retained.WithLabelValues(task).Set(float64(s.Retained))
	c.Pruned.WithLabelValues(task).Add(float64(s.Pruned))
	c.MaxDeltaLogAlpha.WithLabelValues(task).Set(s.MaxDeltaLogAlpha)
	if s.Task == rvm.TaskRegression {
		c.Beta.WithLabelValues(task).Set(s.Beta)
	} else {
		c.NewtonSteps.WithLabelValues(task).Observe(float64(s.NewtonSteps))
	}
}

// OnBasisEvent implements rvm.Observer.
func (c *FitCollector) OnBasisEvent(e rvm.BasisEvent) {
	c.BasisEvents.WithLabelValues(e.Task.String(), e.Action.String()).Inc()
}

// OnFitComplete implements rvm.Observer.
func (c *FitCollector) OnFitComplete(s rvm.FitSummary) {
	task := s.Task.String()
	converged := "false"
	if s.Converged {
		converged = "true"
	}
	c.Fits.WithLabelValues(task, converged).Inc()
	c.RelevanceVectors.WithLabelValues(task).Set(float64(s.RelevanceVectors))
	c.FitDuration.WithLabelValues(task).Observe(s.Duration.Seconds())
}
