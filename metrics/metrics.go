// Package metrics holds the Prometheus collectors for forecasting
// sessions. A nil *Recorder is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shuprophet"

// Recorder owns the collectors registered on one registry.
type Recorder struct {
	toolRuns        *prometheus.CounterVec
	toolLatency     *prometheus.HistogramVec
	forecasterFails *prometheus.CounterVec
	selections      *prometheus.CounterVec
	corrections     *prometheus.CounterVec
	predictLatency  prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		// Labels: tool, outcome (ok, error)
		toolRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "tool_runs_total",
			Help:      "Profiling tool runs by outcome",
		}, []string{"tool", "outcome"}),
		toolLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "tool_duration_seconds",
			Help:      "Profiling tool run latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"tool"}),
		forecasterFails: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ensemble",
			Name:      "forecaster_exclusions_total",
			Help:      "Forecasters excluded from selection",
		}, []string{"model"}),
		// Labels: model, cross_validated
		selections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ensemble",
			Name:      "selections_total",
			Help:      "Models chosen by the ensemble selector",
		}, []string{"model", "cross_validated"}),
		corrections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reasoning",
			Name:      "corrections_total",
			Help:      "Post-predict bias correction decisions",
		}, []string{"applied"}),
		predictLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reasoning",
			Name:      "predict_duration_seconds",
			Help:      "End-to-end predict latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
}

// ObserveTool counts one tool run by outcome and records its latency.
func (r *Recorder) ObserveTool(tool string, ok bool, d time.Duration) {
	if r == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	r.toolRuns.WithLabelValues(tool, outcome).Inc()
	r.toolLatency.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveExclusion counts a forecaster dropped from the ensemble.
func (r *Recorder) ObserveExclusion(model string) {
	if r == nil {
		return
	}
	r.forecasterFails.WithLabelValues(model).Inc()
}

// ObserveSelection counts the chosen model.
func (r *Recorder) ObserveSelection(model string, crossValidated bool) {
	if r == nil {
		return
	}
	r.selections.WithLabelValues(model, strconv.FormatBool(crossValidated)).Inc()
}

// ObserveCorrection counts bias correction decisions.
func (r *Recorder) ObserveCorrection(applied bool) {
	if r == nil {
		return
	}
	r.corrections.WithLabelValues(strconv.FormatBool(applied)).Inc()
}

// ObservePredict records end-to-end session latency.
func (r *Recorder) ObservePredict(d time.Duration) {
	if r == nil {
		return
	}
	r.predictLatency.Observe(d.Seconds())
}
