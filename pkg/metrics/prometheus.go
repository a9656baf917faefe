// Package metrics provides Prometheus metrics for the podium leaderboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Computation outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeEmpty    = "empty"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Leaderboard computation
	computations        *prometheus.CounterVec
	computationDuration prometheus.Histogram
	partitionLatency    prometheus.Histogram
	athletesComputed    prometheus.Gauge
	divisionsComputed   prometheus.Gauge
	gymsComputed        prometheus.Gauge
	eventsComputed      prometheus.Gauge

	// Data access
	storeQueryLatency *prometheus.HistogramVec
	storeErrors       *prometheus.CounterVec

	// Worker pool
	workerActiveCount prometheus.Gauge
	workerTasks       prometheus.Counter
	workerPanics      prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it once at startup, before GetRegistry is handed to the
// metrics handler.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(registry)}, opts...)...)
	customRegistry = registry
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "leaderboard",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.computations = auto.NewCounterVec(m.counterOpts("computations_total",
		"Leaderboard computations by outcome"), []string{"outcome"})
	m.computationDuration = auto.NewHistogram(m.histogramOpts("computation_duration_milliseconds",
		"End-to-end leaderboard computation time in milliseconds, data loading included"))
	m.partitionLatency = auto.NewHistogram(m.histogramOpts("partition_rank_latency_milliseconds",
		"Time to rank one event/division partition in milliseconds"))
	m.athletesComputed = auto.NewGauge(m.gaugeOpts("athletes",
		"Athletes in the most recently computed leaderboard"))
	m.divisionsComputed = auto.NewGauge(m.gaugeOpts("divisions",
		"Divisions in the most recently computed leaderboard"))
	m.gymsComputed = auto.NewGauge(m.gaugeOpts("gyms",
		"Gyms in the most recently computed leaderboard"))
	m.eventsComputed = auto.NewGauge(m.gaugeOpts("events",
		"Published events in the most recently computed leaderboard"))

	m.storeQueryLatency = auto.NewHistogramVec(m.histogramOpts("store_query_latency_milliseconds",
		"Data store query latency in milliseconds"), []string{"query"})
	m.storeErrors = auto.NewCounterVec(m.counterOpts("store_errors_total",
		"Data store query failures"), []string{"query"})

	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count",
		"Ranking tasks currently executing"))
	m.workerTasks = auto.NewCounter(m.counterOpts("worker_tasks_total",
		"Ranking tasks executed by the worker pool"))
	m.workerPanics = auto.NewCounter(m.counterOpts("worker_panics_total",
		"Ranking tasks that panicked"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Errors by component and error type"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"Errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Errors by HTTP endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes",
		"System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count",
		"Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// RecordComputation counts a computation and, unless it failed before any
// work, observes its duration.
func RecordComputation(outcome string, durationMs float64) {
	globalManager.computations.WithLabelValues(outcome).Inc()
	globalManager.computationDuration.Observe(durationMs)
}

// RecordLeaderboardSize publishes the shape of the latest leaderboard.
func RecordLeaderboardSize(events, divisions, athletes, gyms int) {
	globalManager.eventsComputed.Set(float64(events))
	globalManager.divisionsComputed.Set(float64(divisions))
	globalManager.athletesComputed.Set(float64(athletes))
	globalManager.gymsComputed.Set(float64(gyms))
}

// RecordPartitionLatency records how long one ranking task took.
func RecordPartitionLatency(latencyMs float64) {
	globalManager.partitionLatency.Observe(latencyMs)
}

// RecordStoreQuery records the latency of one data store query.
func RecordStoreQuery(query string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(query).Observe(latencyMs)
}

// RecordStoreError counts a failed data store query.
func RecordStoreError(query string) {
	globalManager.storeErrors.WithLabelValues(query).Inc()
}

// WorkerStarted marks a ranking task as running.
func WorkerStarted() {
	globalManager.workerActiveCount.Inc()
	globalManager.workerTasks.Inc()
}

// WorkerFinished marks a ranking task as done.
func WorkerFinished() {
	globalManager.workerActiveCount.Dec()
}

// RecordWorkerPanic counts a recovered task panic.
func RecordWorkerPanic() {
	globalManager.workerPanics.Inc()
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records errors by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records errors by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records errors by HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage updates system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
