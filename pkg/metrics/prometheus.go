// Package metrics provides Prometheus metrics for the talentflow journey client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// scorerLatencyBuckets covers fast local fakes up to slow model-backed scoring.
var scorerLatencyBuckets = []float64{5, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // bucket layout

// Manager owns every collector of the journey client.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Scoring backend traffic
	scorerRequests *prometheus.CounterVec
	scorerLatency  *prometheus.HistogramVec

	// Interview flow
	answersAccepted     prometheus.Counter
	answersRejected     *prometheus.CounterVec
	interviewsCompleted prometheus.Counter
	staleResponses      prometheus.Counter
	lastInterviewScore  prometheus.Gauge

	// Progress and storage
	progressUpdates *prometheus.CounterVec
	storageErrors   *prometheus.CounterVec

	// Voice input and reports
	voiceEvents     *prometheus.CounterVec
	reportsRendered prometheus.Counter

	// Status server
	httpRequests *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "talentflow",
		subsystem:        "journey",
		histogramBuckets: scorerLatencyBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.scorerRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("scorer_requests_total"),
		Help:        "Requests sent to the scoring backend by endpoint and outcome",
		ConstLabels: labels,
	}, []string{"endpoint", "outcome"})

	m.scorerLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("scorer_latency_milliseconds"),
		Help:        "Round-trip latency of scoring backend requests in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint"})

	m.answersAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("answers_accepted_total"),
		Help:        "Answers accepted and scored by the backend",
		ConstLabels: labels,
	})

	m.answersRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("answers_rejected_total"),
		Help:        "Answers rejected before or during submission by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.interviewsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("interviews_completed_total"),
		Help:        "Interview sessions that reached the complete state",
		ConstLabels: labels,
	})

	m.staleResponses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("stale_responses_total"),
		Help:        "Scorer responses dropped because the session moved on",
		ConstLabels: labels,
	})

	m.lastInterviewScore = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("last_interview_score"),
		Help:        "Aggregate score of the most recently completed interview (0-10)",
		ConstLabels: labels,
	})

	m.progressUpdates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("progress_updates_total"),
		Help:        "Progress flag updates by key",
		ConstLabels: labels,
	}, []string{"key"})

	m.storageErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("storage_errors_total"),
		Help:        "Durable storage failures that degraded to in-memory operation",
		ConstLabels: labels,
	}, []string{"op"})

	m.voiceEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("voice_events_total"),
		Help:        "Speech recognition events by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.reportsRendered = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reports_rendered_total"),
		Help:        "Downloadable reports rendered",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Status server requests by endpoint, method and status code",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})
}

// Enabled reports whether the manager records anything.
func (m *Manager) Enabled() bool { return m.enabled }

// RecordScorerRequest counts one backend request.
// outcome is one of ok, api_error, transport_error, malformed.
func RecordScorerRequest(endpoint, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.scorerRequests.WithLabelValues(endpoint, outcome).Inc()
}

// RecordScorerLatency observes the round-trip latency of a backend request.
func RecordScorerLatency(endpoint string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.scorerLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordAnswerAccepted increments the accepted answers counter.
func RecordAnswerAccepted() {
	if !globalManager.enabled {
		return
	}
	globalManager.answersAccepted.Inc()
}

// RecordAnswerRejected counts a rejected answer by reason.
func RecordAnswerRejected(reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.answersRejected.WithLabelValues(reason).Inc()
}

// RecordInterviewCompleted increments the completed interviews counter.
func RecordInterviewCompleted() {
	if !globalManager.enabled {
		return
	}
	globalManager.interviewsCompleted.Inc()
}

// RecordStaleResponse counts a dropped out-of-date scorer response.
func RecordStaleResponse() {
	if !globalManager.enabled {
		return
	}
	globalManager.staleResponses.Inc()
}

// UpdateInterviewScore sets the last aggregate interview score.
func UpdateInterviewScore(score float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.lastInterviewScore.Set(score)
}

// RecordProgressUpdate counts a progress flag write.
func RecordProgressUpdate(key string) {
	if !globalManager.enabled {
		return
	}
	globalManager.progressUpdates.WithLabelValues(key).Inc()
}

// RecordStorageError counts a durable storage failure by operation.
func RecordStorageError(op string) {
	if !globalManager.enabled {
		return
	}
	globalManager.storageErrors.WithLabelValues(op).Inc()
}

// RecordVoiceEvent counts a speech recognition event by kind.
func RecordVoiceEvent(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.voiceEvents.WithLabelValues(kind).Inc()
}

// RecordReportRendered increments the rendered reports counter.
func RecordReportRendered() {
	if !globalManager.enabled {
		return
	}
	globalManager.reportsRendered.Inc()
}

// RecordHTTPRequest counts a status server request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
