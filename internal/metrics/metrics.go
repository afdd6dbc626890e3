package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Metrics holds all Prometheus metrics for monketer
type Metrics struct {
	// Core operation counters and timings (parse, generate, diff)
	OperationsTotal          *prometheus.CounterVec
	OperationDurationSeconds *prometheus.HistogramVec

	// Parser outcome counters
	ElementsParsedTotal  *prometheus.CounterVec
	ElementsDroppedTotal *prometheus.CounterVec
	SectionsSkippedTotal prometheus.Counter

	// Storage gauges
	TemplatesStored   prometheus.Gauge
	TemplateSnapshots prometheus.Gauge

	// Preview delivery counters
	PreviewSendsTotal *prometheus.CounterVec

	// API metrics
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec
	APIErrorsTotal            *prometheus.CounterVec

	// System metrics
	UptimeSeconds    prometheus.Gauge
	Goroutines       prometheus.Gauge
	StorageUsedBytes prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monketer_operations_total",
				Help: "Total number of core operations by kind and outcome",
			},
			[]string{"operation", "status"},
		),
		OperationDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "monketer_operation_duration_seconds",
				Help:    "Duration of core operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		ElementsParsedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monketer_elements_parsed_total",
				Help: "Total number of elements reconstructed from HTML",
			},
			[]string{"type"},
		),
		ElementsDroppedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monketer_elements_dropped_total",
				Help: "Total number of elements dropped during parsing",
			},
			[]string{"reason"},
		),
		SectionsSkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "monketer_sections_skipped_total",
				Help: "Total number of section rows skipped during parsing",
			},
		),

		TemplatesStored: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "monketer_templates_stored",
				Help: "Number of templates currently stored",
			},
		),
		TemplateSnapshots: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "monketer_template_snapshots",
				Help: "Number of historical template snapshots stored",
			},
		),

		PreviewSendsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monketer_preview_sends_total",
				Help: "Total number of preview emails sent",
			},
			[]string{"status"},
		),

		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monketer_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "monketer_api_request_duration_seconds",
				Help:    "Duration of API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		APIErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monketer_api_errors_total",
				Help: "Total number of API errors by type",
			},
			[]string{"error_type"},
		),

		UptimeSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "monketer_uptime_seconds",
				Help: "Time since the server started",
			},
		),
		Goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "monketer_goroutines",
				Help: "Number of running goroutines",
			},
		),
		StorageUsedBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "monketer_storage_used_bytes",
				Help: "BoltDB file size in bytes",
			},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.OperationsTotal,
		m.OperationDurationSeconds,
		m.ElementsParsedTotal,
		m.ElementsDroppedTotal,
		m.SectionsSkippedTotal,
		m.TemplatesStored,
		m.TemplateSnapshots,
		m.PreviewSendsTotal,
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.APIErrorsTotal,
		m.UptimeSeconds,
		m.Goroutines,
		m.StorageUsedBytes,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetGlobal sets the global metrics instance
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// ObserveOperation records one core operation with its outcome and duration
func ObserveOperation(operation, status string, elapsed time.Duration) {
	m := Global()
	if m != nil {
		m.OperationsTotal.WithLabelValues(operation, status).Inc()
		m.OperationDurationSeconds.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
}

// IncElementsParsed increments the parsed element counter
func IncElementsParsed(elementType string) {
	m := Global()
	if m != nil {
		m.ElementsParsedTotal.WithLabelValues(elementType).Inc()
	}
}

// IncElementsDropped increments the dropped element counter
func IncElementsDropped(reason string) {
	m := Global()
	if m != nil {
		m.ElementsDroppedTotal.WithLabelValues(reason).Inc()
	}
}

// IncSectionsSkipped increments the skipped section counter
func IncSectionsSkipped() {
	m := Global()
	if m != nil {
		m.SectionsSkippedTotal.Inc()
	}
}

// IncPreviewSends increments the preview send counter
func IncPreviewSends(status string) {
	m := Global()
	if m != nil {
		m.PreviewSendsTotal.WithLabelValues(status).Inc()
	}
}

// IncAPIErrors increments API error counter
func IncAPIErrors(errorType string) {
	m := Global()
	if m != nil {
		m.APIErrorsTotal.WithLabelValues(errorType).Inc()
	}
}
