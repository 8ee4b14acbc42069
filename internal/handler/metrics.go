package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gaiosophy/content-notifier/internal/domain"
)

// Metrics holds Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	dispatchesTotal     *prometheus.CounterVec
	sendLatency         *prometheus.HistogramVec
	queueDepth          prometheus.Gauge
	triggerEvents       *prometheus.CounterVec
}

// NewMetrics creates metrics registered on their own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		dispatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_dispatches_total",
				Help: "Document events handled, by kind, outcome and skip reason",
			},
			[]string{"kind", "outcome", "reason"},
		),
		sendLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notification_send_latency_seconds",
				Help:    "Time spent in the transport send call",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"transport"},
		),
		queueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "content_event_queue_depth",
				Help: "Current depth of the document event queue",
			},
		),
		triggerEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_trigger_events_total",
				Help: "Document events received, by source and type",
			},
			[]string{"source", "type"},
		),
	}
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordDispatch counts a handled event
func (m *Metrics) RecordDispatch(kind domain.ContentKind, outcome domain.Outcome, reason domain.SkipReason) {
	m.dispatchesTotal.WithLabelValues(string(kind), string(outcome), string(reason)).Inc()
}

// RecordSendLatency observes a transport send
func (m *Metrics) RecordSendLatency(transport string, latency time.Duration) {
	m.sendLatency.WithLabelValues(transport).Observe(latency.Seconds())
}

// RecordTriggerEvent counts an event received from a trigger adapter
func (m *Metrics) RecordTriggerEvent(source domain.EventSource, eventType domain.EventType) {
	m.triggerEvents.WithLabelValues(string(source), string(eventType)).Inc()
}

// SetQueueDepth sets the current queue depth
func (m *Metrics) SetQueueDepth(depth float64) {
	m.queueDepth.Set(depth)
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MetricsHandler handles metrics endpoints
type MetricsHandler struct {
	metrics *Metrics
	queue   domain.EventQueue
	limiter domain.RateLimiter
}

// NewMetricsHandler creates a new MetricsHandler. limiter may be nil.
func NewMetricsHandler(metrics *Metrics, queue domain.EventQueue, limiter domain.RateLimiter) *MetricsHandler {
	return &MetricsHandler{
		metrics: metrics,
		queue:   queue,
		limiter: limiter,
	}
}

// Handler returns the Prometheus HTTP handler
func (h *MetricsHandler) Handler() http.Handler {
	return promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{})
}

// RealtimeMetrics represents real-time queue metrics
type RealtimeMetrics struct {
	QueueDepth  int64 `json:"queue_depth"`
	CurrentRate int64 `json:"current_rate_per_sec"`
}

// RealtimeMetrics handles real-time metrics requests
// @Summary Real-time metrics
// @Description Get the event queue depth and the current send rate
// @Tags metrics
// @Produce json
// @Success 200 {object} Response{data=RealtimeMetrics}
// @Failure 500 {object} Response
// @Router /metrics/realtime [get]
func (h *MetricsHandler) RealtimeMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	depth, err := h.queue.Depth(ctx)
	if err != nil {
		JSONError(w, http.StatusInternalServerError, "METRICS_ERROR", "Failed to get queue depth", nil)
		return
	}

	h.metrics.SetQueueDepth(float64(depth))

	metrics := RealtimeMetrics{QueueDepth: depth}
	if h.limiter != nil {
		rate, err := h.limiter.CurrentRate(ctx, domain.Topic)
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "METRICS_ERROR", "Failed to get current rate", nil)
			return
		}
		metrics.CurrentRate = rate
	}

	JSON(w, http.StatusOK, metrics)
}
