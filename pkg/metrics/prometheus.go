// Package metrics provides Prometheus metrics for the FlexFlow vision service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the FlexFlow service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Pipeline metrics - the per-frame path
	framesReceived  prometheus.Counter
	framesDropped   prometheus.Counter
	framesProcessed prometheus.Counter
	detectLatency   prometheus.Histogram
	outcomes        *prometheus.CounterVec
	pointingHits    prometheus.Counter

	// Observer publish metrics
	landmarkPublishes     prometheus.Counter
	landmarkPublishErrors prometheus.Counter
	observerSubscribers   prometheus.Gauge

	// Whiteboard metrics
	whiteboardReads        prometheus.Counter
	whiteboardWrites       prometheus.Counter
	whiteboardWriteLatency prometheus.Histogram

	// Session metrics
	activeSessions      prometheus.Gauge
	sessionsStarted     prometheus.Counter
	sessionsStopped     prometheus.Counter
	sessionReplacements prometheus.Counter

	// Estimator metrics
	estimatorErrors prometheus.Counter

	// Exercise catalog metrics
	exerciseSearches       prometheus.Counter
	exerciseCacheRefreshes prometheus.Counter
	exerciseCatalogSize    prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "flexflow",
		subsystem:        "vision",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Register metrics on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Pipeline metrics - what the per-frame path is doing
	m.framesReceived = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_received_total",
		Help:      "Total number of frames delivered by sources",
	})

	m.framesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_dropped_total",
		Help:      "Total number of frames overwritten in the latest-frame cell before processing",
	})

	m.framesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_processed_total",
		Help:      "Total number of frames run through the estimator",
	})

	m.detectLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "detect_latency_milliseconds",
		Help:      "Histogram of pose estimator call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.outcomes = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "frame_outcomes_total",
			Help:      "Total number of processed frames by outcome",
		},
		[]string{"outcome"},
	)

	m.pointingHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pointing_detections_total",
		Help:      "Total number of frames with a detected pointing gesture",
	})

	// Observer publish metrics
	m.landmarkPublishes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "landmark_publishes_total",
		Help:      "Total number of landmark arrays published to observers",
	})

	m.landmarkPublishErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "landmark_publish_errors_total",
		Help:      "Total number of swallowed observer publish failures",
	})

	m.observerSubscribers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "observer_subscribers",
		Help:      "Current number of connected landmark observers",
	})

	// Whiteboard metrics
	m.whiteboardReads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "whiteboard_reads_total",
		Help:      "Total number of metrics snapshot reads",
	})

	m.whiteboardWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "whiteboard_writes_total",
		Help:      "Total number of metrics snapshot writes",
	})

	m.whiteboardWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "whiteboard_write_latency_milliseconds",
		Help:      "Whiteboard write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Session metrics
	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Current number of running pipeline sessions",
	})

	m.sessionsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_started_total",
		Help:      "Total number of pipeline sessions started",
	})

	m.sessionsStopped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_stopped_total",
		Help:      "Total number of pipeline sessions stopped",
	})

	m.sessionReplacements = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_replacements_total",
		Help:      "Total number of sessions cancelled to make room for a restart under the same ID",
	})

	// Estimator metrics
	m.estimatorErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "estimator_errors_total",
		Help:      "Total number of estimator call failures",
	})

	// Exercise catalog metrics
	m.exerciseSearches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "exercise_searches_total",
		Help:      "Total number of exercise catalog searches",
	})

	m.exerciseCacheRefreshes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "exercise_cache_refreshes_total",
		Help:      "Total number of exercise catalog fetches from upstream",
	})

	m.exerciseCatalogSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "exercise_catalog_size",
		Help:      "Number of exercises in the cached catalog",
	})

	// HTTP metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Error metrics
	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// Pipeline metrics functions.

// RecordFrameReceived increments the received frames counter.
func RecordFrameReceived() {
	globalManager.framesReceived.Inc()
}

// RecordFrameDropped increments the dropped frames counter.
func RecordFrameDropped() {
	globalManager.framesDropped.Inc()
}

// RecordFrameProcessed increments the processed frames counter.
func RecordFrameProcessed() {
	globalManager.framesProcessed.Inc()
}

// RecordDetectLatency records an estimator call latency in milliseconds.
func RecordDetectLatency(latencyMs float64) {
	globalManager.detectLatency.Observe(latencyMs)
}

// RecordFrameOutcome increments the outcome counter for a processed frame.
// Outcome is one of "no_subject", "camera_covered", "reading".
func RecordFrameOutcome(outcome string) {
	globalManager.outcomes.WithLabelValues(outcome).Inc()
}

// RecordPointingDetection increments the pointing gesture counter.
func RecordPointingDetection() {
	globalManager.pointingHits.Inc()
}

// Observer publish metrics functions.

// RecordLandmarkPublish increments the landmark publish counter.
func RecordLandmarkPublish() {
	globalManager.landmarkPublishes.Inc()
}

// RecordLandmarkPublishError increments the swallowed publish failure counter.
func RecordLandmarkPublishError() {
	globalManager.landmarkPublishErrors.Inc()
}

// UpdateObserverSubscribers sets the current number of connected observers.
func UpdateObserverSubscribers(count int) {
	globalManager.observerSubscribers.Set(float64(count))
}

// Whiteboard metrics functions.

// RecordWhiteboardRead increments the snapshot read counter.
func RecordWhiteboardRead() {
	globalManager.whiteboardReads.Inc()
}

// RecordWhiteboardWrite increments the snapshot write counter.
func RecordWhiteboardWrite() {
	globalManager.whiteboardWrites.Inc()
}

// RecordWhiteboardWriteLatency records a whiteboard write latency.
func RecordWhiteboardWriteLatency(latencyMs float64) {
	globalManager.whiteboardWriteLatency.Observe(latencyMs)
}

// Session metrics functions.

// UpdateActiveSessions sets the number of running sessions.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordSessionStarted increments the sessions started counter.
func RecordSessionStarted() {
	globalManager.sessionsStarted.Inc()
}

// RecordSessionStopped increments the sessions stopped counter.
func RecordSessionStopped() {
	globalManager.sessionsStopped.Inc()
}

// RecordSessionReplacement increments the session replacement counter.
func RecordSessionReplacement() {
	globalManager.sessionReplacements.Inc()
}

// Estimator metrics functions.

// RecordEstimatorError increments the estimator failure counter.
func RecordEstimatorError() {
	globalManager.estimatorErrors.Inc()
}

// Exercise catalog metrics functions.

// RecordExerciseSearch increments the catalog search counter.
func RecordExerciseSearch() {
	globalManager.exerciseSearches.Inc()
}

// RecordExerciseCacheRefresh increments the upstream fetch counter.
func RecordExerciseCacheRefresh() {
	globalManager.exerciseCacheRefreshes.Inc()
}

// UpdateExerciseCatalogSize sets the cached catalog size.
func UpdateExerciseCatalogSize(count int) {
	globalManager.exerciseCatalogSize.Set(float64(count))
}

// HTTP metrics functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System metrics functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
