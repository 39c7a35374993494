package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ChargeMetrics интерфейс для метрик платежей
type ChargeMetrics interface {
	IncChargeCreated(currency string)
	IncChargeFailed(currency, kind string)
	ObserveChargeAmount(amount int64, currency string)
}

type chargeMetrics struct {
	chargesCreated *prometheus.CounterVec
	chargesFailed  *prometheus.CounterVec
	chargesAmount  *prometheus.HistogramVec
}

// NewChargeMetrics создает новые метрики платежей
func NewChargeMetrics(registry *prometheus.Registry) ChargeMetrics {
	chargesCreated := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "charges_created_total",
			Help: "The total number of created charges",
		},
		[]string{"currency"},
	)

	chargesFailed := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "charges_failed_total",
			Help: "The total number of failed charge operations by error kind",
		},
		[]string{"currency", "kind"},
	)

	chargesAmount := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "charges_amount",
			Help:    "Charge amounts distribution in minor currency units",
			Buckets: prometheus.ExponentialBuckets(100, 10, 6), // 1.00 ... 1 000 000.00
		},
		[]string{"currency"},
	)

	return &chargeMetrics{
		chargesCreated: chargesCreated,
		chargesFailed:  chargesFailed,
		chargesAmount:  chargesAmount,
	}
}

// IncChargeCreated увеличивает счетчик созданных платежей
func (m *chargeMetrics) IncChargeCreated(currency string) {
	m.chargesCreated.WithLabelValues(currency).Inc()
}

// IncChargeFailed увеличивает счетчик неудачных операций
func (m *chargeMetrics) IncChargeFailed(currency, kind string) {
	m.chargesFailed.WithLabelValues(currency, kind).Inc()
}

// ObserveChargeAmount записывает сумму платежа
func (m *chargeMetrics) ObserveChargeAmount(amount int64, currency string) {
	m.chargesAmount.WithLabelValues(currency).Observe(float64(amount))
}

type nopChargeMetrics struct{}

// NewNopChargeMetrics возвращает метрики, которые ничего не записывают
func NewNopChargeMetrics() ChargeMetrics {
	return nopChargeMetrics{}
}

func (nopChargeMetrics) IncChargeCreated(string)           {}
func (nopChargeMetrics) IncChargeFailed(string, string)    {}
func (nopChargeMetrics) ObserveChargeAmount(int64, string) {}
