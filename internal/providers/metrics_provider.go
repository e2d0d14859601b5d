package providers

import (
	"time"
	"wxhm/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncNotifications(result string)
	ObserveDispatchDuration(duration time.Duration)
	SetQueueLength(n int)
	AddEvictions(n int)
}

const (
	NotifySent    = "sent"
	NotifyFailed  = "failed"
	NotifySkipped = "skipped"
	NotifyDropped = "dropped"
)

type MetricsProvider struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	notifications    *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
	queueLength      prometheus.Gauge
	evictions        prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncNotifications(result string) {
	m.notifications.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObserveDispatchDuration(duration time.Duration) {
	m.dispatchDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetQueueLength(n int) {
	m.queueLength.Set(float64(n))
}

func (m *MetricsProvider) AddEvictions(n int) {
	m.evictions.Add(float64(n))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wxhm_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wxhm_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wxhm_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wxhm_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		notifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wxhm_notifications_total",
			Help: "Notification events by delivery result",
		}, []string{"result"}),

		dispatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "wxhm_dispatch_duration_seconds",
			Help:    "Duration of outbound notification calls in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		queueLength: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wxhm_notify_queue_length",
			Help: "Notification events waiting for a worker",
		}),

		evictions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wxhm_asset_evictions_total",
			Help: "Expired assets removed during reads",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncNotifications(_ string)                        {}
func (n *noopMetrics) ObserveDispatchDuration(_ time.Duration)          {}
func (n *noopMetrics) SetQueueLength(_ int)                             {}
func (n *noopMetrics) AddEvictions(_ int)                               {}
