// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// UpdatesTotal tracks inbound Telegram updates by disposition.
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_total",
			Help: "Inbound Telegram updates",
		},
		[]string{"disposition"}, // scheduled, ignored, malformed, dropped
	)

	// TasksInFlight tracks background tasks currently running.
	TasksInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_tasks_in_flight",
			Help: "Background tasks currently running",
		},
	)

	// TaskQueueDepth tracks queued background tasks.
	TaskQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_task_queue_depth",
			Help: "Background tasks waiting in the queue",
		},
	)

	// GenerateDuration tracks generation backend latency.
	GenerateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_generate_duration_seconds",
			Help:    "Generation request duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider", "status"},
	)

	// RepliesTotal tracks reply delivery attempts.
	RepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_replies_total",
			Help: "Reply delivery attempts",
		},
		[]string{"status"}, // sent, failed
	)

	// RepliesTruncatedTotal counts replies cut to the Telegram size limit.
	RepliesTruncatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_replies_truncated_total",
			Help: "Replies truncated before delivery",
		},
	)

	// ConversationsActive tracks conversations held in memory.
	ConversationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversations_active",
			Help: "Conversations currently held in memory",
		},
	)

	// EventsPublishedTotal tracks audit events published to NATS.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_events_published_total",
			Help: "Exchange audit events published",
		},
		[]string{"status"}, // ok, failed
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordGenerate records metrics for one generation call.
func RecordGenerate(provider, status string, duration float64) {
	GenerateDuration.WithLabelValues(provider, status).Observe(duration)
}
