// Package metrics provides Prometheus metrics for the ATOM evaluation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the ATOM service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Scoring Metrics
	evaluations           prometheus.Counter
	evaluationLatency     prometheus.Histogram
	disagreementsFlagged  prometheus.Counter
	fingerprintsComputed  prometheus.Counter
	snapshotsCaptured     prometheus.Counter
	snapshotsPopped       prometheus.Counter
	snapshotPopsOnEmpty   prometheus.Counter
	documentImports       *prometheus.CounterVec
	documentExports       *prometheus.CounterVec
	documentResets        prometheus.Counter
	storeMutations        *prometheus.CounterVec
	storeMutationLatency  prometheus.Histogram
	criteriaPurgedEntries prometheus.Counter

	// Document Gauges
	companiesTotal       prometheus.Gauge
	criteriaTotal        prometheus.Gauge
	criteriaEnabledTotal prometheus.Gauge
	snapshotsTotal       prometheus.Gauge

	// Persistence Metrics
	saves           prometheus.Counter
	saveFailures    prometheus.Counter
	saveLatency     prometheus.Histogram
	savesCoalesced  prometheus.Counter
	savesStale      prometheus.Counter
	queueDepth      prometheus.Gauge
	queueCapacity   prometheus.Gauge
	lastSaveUnix    prometheus.Gauge
	stateLoads      *prometheus.CounterVec
	persisterActive prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "atom",
		subsystem:        "evaluate",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Scoring Metrics
	m.evaluations = m.counter("evaluations_total", "Total number of assessment evaluations")
	m.evaluationLatency = m.histogram("evaluation_latency_milliseconds", "Histogram of evaluation latency in milliseconds", m.histogramBuckets)
	m.disagreementsFlagged = m.counter("disagreements_flagged_total", "Evaluations where the two overall views disagree beyond the threshold")
	m.fingerprintsComputed = m.counter("fingerprints_computed_total", "Total number of criteria fingerprints computed")
	m.snapshotsCaptured = m.counter("snapshots_captured_total", "Total number of snapshots captured")
	m.snapshotsPopped = m.counter("snapshots_popped_total", "Total number of snapshots removed from history")
	m.snapshotPopsOnEmpty = m.counter("snapshot_pops_empty_total", "Pop requests against an empty history")
	m.documentImports = m.counterVec("document_imports_total", "Document imports by result and reason", "result", "reason")
	m.documentExports = m.counterVec("document_exports_total", "Document exports by format", "format")
	m.documentResets = m.counter("document_resets_total", "Total number of resets to the default document")
	m.storeMutations = m.counterVec("store_mutations_total", "Store commands by operation", "operation")
	m.storeMutationLatency = m.histogram("store_mutation_latency_milliseconds", "Latency of store commands in milliseconds", m.histogramBuckets)
	m.criteriaPurgedEntries = m.counter("criteria_purged_entries_total", "Scores and notes purged after a criterion was disabled or removed")

	// Document Gauges
	m.companiesTotal = m.gauge("companies", "Number of companies in the document")
	m.criteriaTotal = m.gauge("criteria", "Number of criteria in the document")
	m.criteriaEnabledTotal = m.gauge("criteria_enabled", "Number of enabled criteria")
	m.snapshotsTotal = m.gauge("snapshots", "Number of snapshots across all companies")

	// Persistence Metrics
	m.saves = m.counter("saves_total", "Total number of successful state saves")
	m.saveFailures = m.counter("save_failures_total", "Total number of failed state saves")
	m.saveLatency = m.histogram("save_latency_milliseconds", "State save latency in milliseconds", m.histogramBuckets)
	m.savesCoalesced = m.counter("saves_coalesced_total", "Pending saves replaced by a newer one before being written")
	m.savesStale = m.counter("saves_stale_total", "Saves skipped because a newer revision was already written")
	m.queueDepth = m.gauge("save_queue_depth", "Number of saves waiting to be written")
	m.queueCapacity = m.gauge("save_queue_capacity", "Capacity of the save queue")
	m.lastSaveUnix = m.gauge("last_save_unix", "Unix time of the last successful save")
	m.stateLoads = m.counterVec("state_loads_total", "State file loads by result", "result")
	m.persisterActive = m.gauge("persister_active", "1 while the background persister is running")

	// HTTP Performance Metrics
	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	// Error Metrics
	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that resulted in errors", "component", "error_type")

	// System Performance Metrics
	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Scoring Metrics Functions.

// RecordEvaluation counts one evaluation and its latency.
func RecordEvaluation(latencyMs float64, disagreement bool) {
	globalManager.evaluations.Inc()
	globalManager.evaluationLatency.Observe(latencyMs)
	if disagreement {
		globalManager.disagreementsFlagged.Inc()
	}
}

// RecordFingerprint increments the fingerprint counter.
func RecordFingerprint() {
	globalManager.fingerprintsComputed.Inc()
}

// RecordSnapshotCaptured increments the captured snapshots counter.
func RecordSnapshotCaptured() {
	globalManager.snapshotsCaptured.Inc()
}

// RecordSnapshotPopped counts a pop; removed is false for an empty history.
func RecordSnapshotPopped(removed bool) {
	if removed {
		globalManager.snapshotsPopped.Inc()
		return
	}
	globalManager.snapshotPopsOnEmpty.Inc()
}

// RecordImport counts an import attempt. reason is empty on success.
func RecordImport(ok bool, reason string) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	globalManager.documentImports.WithLabelValues(result, reason).Inc()
}

// RecordExport counts an export in the given format.
func RecordExport(format string) {
	globalManager.documentExports.WithLabelValues(format).Inc()
}

// RecordReset increments the reset counter.
func RecordReset() {
	globalManager.documentResets.Inc()
}

// RecordStoreMutation counts a store command and its latency.
func RecordStoreMutation(operation string, latencyMs float64) {
	globalManager.storeMutations.WithLabelValues(operation).Inc()
	globalManager.storeMutationLatency.Observe(latencyMs)
}

// RecordCriteriaPurged adds the number of purged score and note entries.
func RecordCriteriaPurged(entries int) {
	if entries > 0 {
		globalManager.criteriaPurgedEntries.Add(float64(entries))
	}
}

// Document Gauge Functions.

// UpdateDocumentCounts sets the document size gauges.
func UpdateDocumentCounts(companies, criteria, enabledCriteria, snapshots int) {
	globalManager.companiesTotal.Set(float64(companies))
	globalManager.criteriaTotal.Set(float64(criteria))
	globalManager.criteriaEnabledTotal.Set(float64(enabledCriteria))
	globalManager.snapshotsTotal.Set(float64(snapshots))
}

// Persistence Metrics Functions.

// RecordSave records a save attempt and its latency.
func RecordSave(latencyMs float64, err error) {
	globalManager.saveLatency.Observe(latencyMs)
	if err != nil {
		globalManager.saveFailures.Inc()
		return
	}
	globalManager.saves.Inc()
}

// UpdateLastSaveUnix sets the time of the last successful save.
func UpdateLastSaveUnix(unix float64) {
	globalManager.lastSaveUnix.Set(unix)
}

// RecordSaveCoalesced increments the coalesced saves counter.
func RecordSaveCoalesced() {
	globalManager.savesCoalesced.Inc()
}

// RecordSaveStale increments the stale saves counter.
func RecordSaveStale() {
	globalManager.savesStale.Inc()
}

// UpdateQueueDepth sets the number of pending saves.
func UpdateQueueDepth(depth int) {
	globalManager.queueDepth.Set(float64(depth))
}

// UpdateQueueCapacity sets the save queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordStateLoad counts a state file load by result (loaded, missing, unreadable).
func RecordStateLoad(result string) {
	globalManager.stateLoads.WithLabelValues(result).Inc()
}

// UpdatePersisterActive flags whether the background persister runs.
func UpdatePersisterActive(active bool) {
	v := 0.0
	if active {
		v = 1
	}
	globalManager.persisterActive.Set(v)
}

// HTTP Metrics Functions.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
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
