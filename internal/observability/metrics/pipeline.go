package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics covers document processing and the model calls behind it.
type PipelineMetrics struct {
	registry *prometheus.Registry
	service  string

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	strategyTotal   *prometheus.CounterVec

	llmCacheTotal   *prometheus.CounterVec
	llmAttemptTotal *prometheus.CounterVec
	llmCallDuration *prometheus.HistogramVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docmeta",
			Subsystem: "pipeline",
			Name:      "document_process_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docmeta",
			Subsystem: "pipeline",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by status.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docmeta",
			Subsystem: "pipeline",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document processing runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	strategyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docmeta",
			Subsystem: "pipeline",
			Name:      "extraction_strategy_total",
			Help:      "Extraction strategies selected, by kind and whether dynamic discovery degraded.",
		},
		[]string{"service", "strategy"},
	)
	llmCacheTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docmeta",
			Subsystem: "llm",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		},
		[]string{"service", "result"},
	)
	llmAttemptTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docmeta",
			Subsystem: "llm",
			Name:      "remote_attempts_total",
			Help:      "Remote model attempts by provider and outcome.",
		},
		[]string{"service", "provider", "outcome"},
	)
	llmCallDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docmeta",
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Model call duration including retries, by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "provider", "outcome"},
	)

	registry.MustRegister(
		processTotal,
		processDuration,
		processInFlight,
		strategyTotal,
		llmCacheTotal,
		llmAttemptTotal,
		llmCallDuration,
	)

	return &PipelineMetrics{
		registry:        registry,
		service:         service,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		strategyTotal:   strategyTotal,
		llmCacheTotal:   llmCacheTotal,
		llmAttemptTotal: llmAttemptTotal,
		llmCallDuration: llmCallDuration,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry lets other collectors (HTTP metrics) share the same exposition.
func (m *PipelineMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PipelineMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *PipelineMetrics) FinishDocument(status string, duration time.Duration) {
	m.processInFlight.Dec()
	if status == "" {
		status = "unknown"
	}
	m.processTotal.WithLabelValues(m.service, status).Inc()
	m.processDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *PipelineMetrics) RecordStrategy(strategy string) {
	m.strategyTotal.WithLabelValues(m.service, strategy).Inc()
}

func (m *PipelineMetrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.llmCacheTotal.WithLabelValues(m.service, result).Inc()
}

func (m *PipelineMetrics) RecordAttempt(provider, outcome string) {
	m.llmAttemptTotal.WithLabelValues(m.service, provider, outcome).Inc()
}

func (m *PipelineMetrics) ObserveCall(provider, outcome string, duration time.Duration) {
	m.llmCallDuration.WithLabelValues(m.service, provider, outcome).Observe(duration.Seconds())
}
