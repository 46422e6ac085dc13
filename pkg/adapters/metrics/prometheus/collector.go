package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements MetricsCollector using Prometheus
type Collector struct {
	sessionsCreated   *prometheus.CounterVec
	sessionsFinished  *prometheus.CounterVec
	sessionDuration   *prometheus.HistogramVec
	stepsExecuted     *prometheus.CounterVec
	stepDuration      *prometheus.HistogramVec
	providerRetries   *prometheus.CounterVec
	activeSessions    prometheus.Gauge
	subscribers       prometheus.Gauge
	eventsDropped     prometheus.Counter
	pollRequests      prometheus.Counter
	workerPoolIdle    prometheus.Gauge
	workerPoolBusy    prometheus.Gauge
	workerPoolStopped prometheus.Gauge
}

// NewCollector creates a new Prometheus metrics collector registered on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		sessionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debatehub_sessions_created_total",
				Help: "Total number of sessions created",
			},
			[]string{"kind"},
		),
		sessionsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debatehub_sessions_finished_total",
				Help: "Total number of sessions that reached a terminal state",
			},
			[]string{"kind", "outcome"},
		),
		sessionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "debatehub_session_duration_seconds",
				Help:    "Session duration from creation to terminal state",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"kind"},
		),
		stepsExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debatehub_steps_executed_total",
				Help: "Total number of provider steps executed",
			},
			[]string{"provider", "status"},
		),
		stepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "debatehub_step_duration_seconds",
				Help:    "Provider step duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"provider"},
		),
		providerRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debatehub_provider_retries_total",
				Help: "Total number of retried provider calls",
			},
			[]string{"provider"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "debatehub_active_sessions",
				Help: "Number of sessions not yet in a terminal state",
			},
		),
		subscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "debatehub_progress_subscribers",
				Help: "Number of attached push subscribers",
			},
		),
		eventsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "debatehub_progress_events_dropped_total",
				Help: "Progress events dropped from full subscriber queues",
			},
		),
		pollRequests: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "debatehub_progress_polls_total",
				Help: "Total number of progress poll requests",
			},
		),
		workerPoolIdle: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "debatehub_worker_pool_idle",
				Help: "Number of idle workers",
			},
		),
		workerPoolBusy: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "debatehub_worker_pool_busy",
				Help: "Number of busy workers",
			},
		),
		workerPoolStopped: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "debatehub_worker_pool_stopped",
				Help: "Number of stopped workers",
			},
		),
	}
}

// RecordSessionCreated records a session creation
func (c *Collector) RecordSessionCreated(kind string) {
	c.sessionsCreated.WithLabelValues(kind).Inc()
}

// RecordSessionFinished records a terminal session
func (c *Collector) RecordSessionFinished(kind, outcome string, duration time.Duration) {
	c.sessionsFinished.WithLabelValues(kind, outcome).Inc()
	c.sessionDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordStep records one provider step
func (c *Collector) RecordStep(provider, status string, duration time.Duration) {
	c.stepsExecuted.WithLabelValues(provider, status).Inc()
	c.stepDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordProviderRetry records a retried provider call
func (c *Collector) RecordProviderRetry(provider string) {
	c.providerRetries.WithLabelValues(provider).Inc()
}

// SetActiveSessions sets the number of running sessions
func (c *Collector) SetActiveSessions(count int) {
	c.activeSessions.Set(float64(count))
}

// SetSubscribers sets the number of attached push subscribers
func (c *Collector) SetSubscribers(count int) {
	c.subscribers.Set(float64(count))
}

// RecordEventDropped records an event dropped from a slow subscriber
func (c *Collector) RecordEventDropped() {
	c.eventsDropped.Inc()
}

// RecordPoll records a progress poll
func (c *Collector) RecordPoll() {
	c.pollRequests.Inc()
}

// RecordWorkerPoolStatus records worker pool status
func (c *Collector) RecordWorkerPoolStatus(idle, busy, stopped int) {
	c.workerPoolIdle.Set(float64(idle))
	c.workerPoolBusy.Set(float64(busy))
	c.workerPoolStopped.Set(float64(stopped))
}
