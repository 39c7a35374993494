package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargeMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewChargeMetrics(registry).(*chargeMetrics)

	m.IncChargeCreated("usd")
	m.IncChargeCreated("usd")
	m.IncChargeFailed("eur", "card")
	m.ObserveChargeAmount(2000, "usd")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.chargesCreated.WithLabelValues("usd")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chargesFailed.WithLabelValues("eur", "card")))

	count, err := testutil.GatherAndCount(registry, "charges_amount")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAPIMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewAPIMetrics(registry).(*apiMetrics)

	m.ObserveRequest("charges", "post", "success", 120*time.Millisecond)
	m.ObserveRequest("charges", "post", "card", 80*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("charges", "post", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("charges", "post", "card")))

	count, err := testutil.GatherAndCount(registry, "stripe_api_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewRegistryIncludesRuntimeCollectors(t *testing.T) {
	families, err := NewRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
}

func TestNopMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNopChargeMetrics().IncChargeCreated("usd")
		NewNopChargeMetrics().IncChargeFailed("usd", "card")
		NewNopChargeMetrics().ObserveChargeAmount(1, "usd")
		NewNopAPIMetrics().ObserveRequest("charges", "get", "success", time.Second)
	})
}
