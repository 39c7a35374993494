package stripe

import (
	"context"
	"errors"
	"testing"

	"github.com/Dhoini/stripe-charge/internal/metrics"
	"github.com/Dhoini/stripe-charge/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeTransport имитирует ответ API без сети
type fakeTransport struct {
	body   []byte
	status int
	err    error

	calls  int
	verb   Verb
	method string
	params Params
	id     string
}

func (f *fakeTransport) Execute(_ context.Context, verb Verb, method string, params Params, id string) ([]byte, int, error) {
	f.calls++
	f.verb, f.method, f.params, f.id = verb, method, params, id
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.body, f.status, nil
}

func newTestClient(t *testing.T, cfg Config, transport Transport, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithTransport(transport)}, opts...)
	c, err := NewClient(cfg, logger.NewNop(), opts...)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{APIKey: "  "}, logger.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestClientRequestSuccess(t *testing.T) {
	transport := &fakeTransport{status: 200, body: []byte(`{"id":"ch_1","paid":true}`)}
	c := newTestClient(t, DefaultConfig("sk_test"), transport)

	resp, err := c.Request(context.Background(), VerbGet, MethodCharges, nil, "ch_1")
	require.NoError(t, err)
	assert.Equal(t, "ch_1", resp.ID())
	assert.Equal(t, true, resp["paid"])

	assert.Equal(t, 1, transport.calls)
	assert.Equal(t, VerbGet, transport.verb)
	assert.Equal(t, "ch_1", transport.id)
}

func TestClientRequestCardError(t *testing.T) {
	transport := &fakeTransport{status: 402, body: []byte(`{"error":{"message":"card declined"}}`)}
	c := newTestClient(t, DefaultConfig("sk_test"), transport)

	resp, err := c.Request(context.Background(), VerbPost, MethodCharges, Params{}, "")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrCard)

	var stripeErr *Error
	require.True(t, errors.As(err, &stripeErr))
	assert.Equal(t, "card declined", stripeErr.APIMessage)
}

func TestClientRequestTransportErrorHasNoBody(t *testing.T) {
	transport := &fakeTransport{err: networkError(errors.New("boom"))}
	c := newTestClient(t, DefaultConfig("sk_test"), transport)

	resp, err := c.Request(context.Background(), VerbGet, MethodCharges, nil, "ch_1")
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Contains(t, err.Error(), unexpectedFailure)
}

func TestClientRecordsMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	apiMetrics := metrics.NewAPIMetrics(registry)

	ok := newTestClient(t, DefaultConfig("sk_test"), &fakeTransport{status: 200, body: []byte(`{}`)}, WithMetrics(apiMetrics))
	_, err := ok.Request(context.Background(), VerbPost, MethodCharges, nil, "")
	require.NoError(t, err)

	failing := newTestClient(t, DefaultConfig("sk_test"), &fakeTransport{status: 500, body: []byte("oops")}, WithMetrics(apiMetrics))
	_, err = failing.Request(context.Background(), VerbPost, MethodCharges, nil, "")
	require.Error(t, err)

	count, err := testutil.GatherAndCount(registry, "stripe_api_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := registry.Gather()
	require.NoError(t, err)

	outcomes := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "stripe_api_requests_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "outcome" {
					outcomes[label.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"success": 1, "malformed_response": 1}, outcomes)
}

func TestClientLogsActivityOnlyWhenEnabled(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core), logger.DEBUG)
	transport := &fakeTransport{status: 200, body: []byte(`{"id":"ch_1"}`)}

	quiet, err := NewClient(DefaultConfig("sk_test"), log, WithTransport(transport))
	require.NoError(t, err)
	_, err = quiet.Request(context.Background(), VerbGet, MethodCharges, nil, "ch_1")
	require.NoError(t, err)
	assert.Zero(t, logs.Len())

	cfg := DefaultConfig("sk_test")
	cfg.LogActivity = true
	loud, err := NewClient(cfg, log, WithTransport(transport))
	require.NoError(t, err)
	_, err = loud.Request(context.Background(), VerbGet, MethodCharges, nil, "ch_1")
	require.NoError(t, err)

	completed := logs.FilterMessage("Stripe API request completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, "ch_1", completed[0].ContextMap()["object_id"])
	assert.Equal(t, "stripe", completed[0].ContextMap()["component"])
}

func TestClientWarnsWhenVerificationDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := logger.FromZap(zap.New(core), logger.WARN)

	_, err := NewClient(Config{APIKey: "sk_test", VerifySSLCertificates: false}, log)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("TLS certificate verification is disabled for Stripe API calls").Len())
}
