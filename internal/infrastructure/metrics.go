package infrastructure

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "insights"

var (
	analysisRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "analysis_runs_total",
		Help:      "Analysis runs by analysis name and outcome.",
	}, []string{"analysis", "outcome"})

	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "analysis_duration_seconds",
		Help:      "Time spent computing one analysis.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"analysis"})

	datasetRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "dataset_rows",
		Help:      "Rows in the loaded grading dataset.",
	})
)

// ObserveRun records the outcome and duration of one analysis run.
func ObserveRun(analysis, outcome string, d time.Duration) {
	analysisRuns.WithLabelValues(analysis, outcome).Inc()
	analysisDuration.WithLabelValues(analysis).Observe(d.Seconds())
}

// SetDatasetRows publishes the size of the loaded table.
func SetDatasetRows(n int) {
	datasetRows.Set(float64(n))
}

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
