package metrics

import "github.com/prometheus/client_golang/prometheus"

// Model call Prometheus metrics. "role" is embedding / summarization / generation.
var (
	ModelRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "researchpipe",
			Name:      "model_requests_total",
			Help:      "Total number of model provider requests",
		},
		[]string{"role", "model", "status"},
	)

	ModelRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "researchpipe",
			Name:      "model_request_duration_seconds",
			Help:      "Model provider request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"role", "model"},
	)

	ModelTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "researchpipe",
			Name:      "model_tokens_total",
			Help:      "Total model tokens consumed",
		},
		[]string{"role", "model", "type"},
	)

	ModelErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "researchpipe",
			Name:      "model_errors_total",
			Help:      "Total model provider errors",
		},
		[]string{"role", "model", "error_type"},
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "researchpipe",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"}, // context / propose / validate / gaps
	)

	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "researchpipe",
			Name:      "pipeline_runs_total",
			Help:      "Total pipeline runs",
		},
		[]string{"status"},
	)
)

var modelMetricsRegistered bool

// RegisterModelMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterModelMetrics() {
	if modelMetricsRegistered {
		return
	}
	prometheus.MustRegister(ModelRequestsTotal)
	prometheus.MustRegister(ModelRequestDuration)
	prometheus.MustRegister(ModelTokensTotal)
	prometheus.MustRegister(ModelErrorsTotal)
	prometheus.MustRegister(PipelineStageDuration)
	prometheus.MustRegister(PipelineRunsTotal)
	modelMetricsRegistered = true
}
