package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gencsv_generations_total",
			Help: "Total number of generation requests by outcome.",
		},
		[]string{"outcome"},
	)

	generationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gencsv_generation_duration_seconds",
			Help:    "Latency of model generation calls.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	outputRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gencsv_output_rows",
			Help:    "Data rows found in model output.",
			Buckets: []float64{0, 5, 10, 15, 19, 20, 21, 25, 40},
		},
	)

	malformedOutputsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gencsv_malformed_outputs_total",
			Help: "Total number of generated outputs that deviate from the requested layout.",
		},
	)

	modelLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gencsv_model_loads_total",
			Help: "Total number of model load attempts by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		generationsTotal,
		generationDurationSeconds,
		outputRows,
		malformedOutputsTotal,
		modelLoadsTotal,
	)
}

// ObserveOutcome counts a finished request. outcome is "ok" or an error kind.
func ObserveOutcome(outcome string) {
	generationsTotal.WithLabelValues(outcome).Inc()
}

func ObserveGeneration(elapsed time.Duration, rows int, wellFormed bool) {
	generationDurationSeconds.Observe(elapsed.Seconds())
	outputRows.Observe(float64(rows))
	if !wellFormed {
		malformedOutputsTotal.Inc()
	}
}

func ObserveModelLoad(err error) {
	if err != nil {
		modelLoadsTotal.WithLabelValues("error").Inc()
		return
	}
	modelLoadsTotal.WithLabelValues("ok").Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
