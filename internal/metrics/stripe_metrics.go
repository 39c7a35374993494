package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APIMetrics интерфейс для метрик обращений к API Stripe
type APIMetrics interface {
	ObserveRequest(method, verb, outcome string, duration time.Duration)
}

type apiMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewAPIMetrics создает метрики обращений к API Stripe
func NewAPIMetrics(registry *prometheus.Registry) APIMetrics {
	requests := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "stripe_api_requests_total",
			Help: "The total number of Stripe API requests by outcome",
		},
		[]string{"method", "verb", "outcome"},
	)

	duration := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stripe_api_request_duration_seconds",
			Help:    "Stripe API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "verb"},
	)

	return &apiMetrics{
		requests: requests,
		duration: duration,
	}
}

// ObserveRequest учитывает один запрос к API
func (m *apiMetrics) ObserveRequest(method, verb, outcome string, duration time.Duration) {
	m.requests.WithLabelValues(method, verb, outcome).Inc()
	m.duration.WithLabelValues(method, verb).Observe(duration.Seconds())
}

type nopAPIMetrics struct{}

// NewNopAPIMetrics возвращает метрики, которые ничего не записывают
func NewNopAPIMetrics() APIMetrics {
	return nopAPIMetrics{}
}

func (nopAPIMetrics) ObserveRequest(string, string, string, time.Duration) {}
