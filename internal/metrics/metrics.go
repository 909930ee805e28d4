package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	fetchesTotal       *prometheus.CounterVec
	syntheticFallbacks prometheus.Counter
	cacheLookups       *prometheus.CounterVec
	refreshCycles      *prometheus.CounterVec
	refreshDuration    *prometheus.HistogramVec
	broadcastsTotal    *prometheus.CounterVec
	subscribersActive  *prometheus.GaugeVec
	predictionsTotal   *prometheus.CounterVec
	streamClients      prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_fetches_total",
			Help: "Total number of quote fetch attempts per source",
		},
		[]string{"source", "status"},
	)
	r.syntheticFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_synthetic_fallbacks_total",
			Help: "Total number of quotes synthesized after source exhaustion",
		},
	)
	r.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_cache_lookups_total",
			Help: "Total number of cache lookups per class",
		},
		[]string{"class", "result"},
	)
	r.refreshCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_refresh_cycles_total",
			Help: "Total number of refresh cycles completed",
		},
		[]string{"kind"},
	)
	r.refreshDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulse_refresh_duration_seconds",
			Help:    "Refresh cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	r.broadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_broadcasts_total",
			Help: "Total number of subscriber broadcasts",
		},
		[]string{"channel"},
	)
	r.subscribersActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pulse_subscribers_active",
			Help: "Number of active subscribers",
		},
		[]string{"channel"},
	)
	r.predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_predictions_total",
			Help: "Total number of predictions generated per strategy",
		},
		[]string{"strategy"},
	)
	r.streamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_stream_clients",
			Help: "Number of connected WebSocket stream clients",
		},
	)

	reg.MustRegister(r.fetchesTotal)
	reg.MustRegister(r.syntheticFallbacks)
	reg.MustRegister(r.cacheLookups)
	reg.MustRegister(r.refreshCycles)
	reg.MustRegister(r.refreshDuration)
	reg.MustRegister(r.broadcastsTotal)
	reg.MustRegister(r.subscribersActive)
	reg.MustRegister(r.predictionsTotal)
	reg.MustRegister(r.streamClients)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordFetch records one fetch attempt against a source.
func (r *Registry) RecordFetch(source, status string) {
	r.fetchesTotal.WithLabelValues(source, status).Inc()
}

// RecordSyntheticFallback records a quote synthesized after every
// source failed.
func (r *Registry) RecordSyntheticFallback() {
	r.syntheticFallbacks.Inc()
}

// RecordCacheLookup records a cache hit or miss for a TTL class.
func (r *Registry) RecordCacheLookup(class, result string) {
	r.cacheLookups.WithLabelValues(class, result).Inc()
}

// RecordRefreshCycle records a completed refresh cycle.
func (r *Registry) RecordRefreshCycle(kind string, duration float64) {
	r.refreshCycles.WithLabelValues(kind).Inc()
	r.refreshDuration.WithLabelValues(kind).Observe(duration)
}

// RecordBroadcast records a subscriber broadcast on a channel.
func (r *Registry) RecordBroadcast(channel string) {
	r.broadcastsTotal.WithLabelValues(channel).Inc()
}

// SetSubscribers sets the active subscriber count for a channel.
func (r *Registry) SetSubscribers(channel string, count int) {
	r.subscribersActive.WithLabelValues(channel).Set(float64(count))
}

// RecordPrediction records a generated prediction.
func (r *Registry) RecordPrediction(strategy string) {
	r.predictionsTotal.WithLabelValues(strategy).Inc()
}

// StreamClientInc increments connected stream clients.
func (r *Registry) StreamClientInc() {
	r.streamClients.Inc()
}

// StreamClientDec decrements connected stream clients.
func (r *Registry) StreamClientDec() {
	r.streamClients.Dec()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
