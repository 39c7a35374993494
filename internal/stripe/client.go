package stripe

import (
	"context"
	"strings"
	"time"

	"github.com/Dhoini/stripe-charge/internal/metrics"
	"github.com/Dhoini/stripe-charge/pkg/logger"
)

// Requester выполняет запрос к API Stripe и возвращает интерпретированный ответ.
// Его используют и Charge, и LegacyClient.
type Requester interface {
	Request(ctx context.Context, verb Verb, method string, params Params, id string) (Response, error)
}

// Client связывает транспорт и интерпретацию ответа
type Client struct {
	transport Transport
	log       *logger.Logger
	metrics   metrics.APIMetrics
}

// Option настраивает Client
type Option func(*Client)

// WithTransport подменяет транспорт (например, в тестах)
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithMetrics включает метрики обращений к API
func WithMetrics(m metrics.APIMetrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewClient создает новый клиент Stripe. Логирование обращений включается через cfg.LogActivity.
func NewClient(cfg Config, log *logger.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, newError(KindConfiguration, "Configuration error: Stripe API key is required", 0, nil)
	}

	if log == nil {
		log = logger.NewNop()
	}
	if !cfg.VerifySSLCertificates {
		log.Warnw("TLS certificate verification is disabled for Stripe API calls")
	}

	activityLog := logger.NewNop()
	if cfg.LogActivity {
		activityLog = log.With("component", "stripe")
	}

	c := &Client{
		transport: NewHTTPTransport(cfg),
		log:       activityLog,
		metrics:   metrics.NewNopAPIMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Request выполняет запрос и интерпретирует ответ
func (c *Client) Request(ctx context.Context, verb Verb, method string, params Params, id string) (Response, error) {
	start := time.Now()
	c.log.Debugw("Stripe API request", "verb", string(verb), "method", method, "id", id)

	body, status, err := c.transport.Execute(ctx, verb, method, params, id)

	var resp Response
	if err == nil {
		resp, err = Interpret(body, status)
	}

	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
	}
	c.metrics.ObserveRequest(method, string(verb), outcome, time.Since(start))

	if err != nil {
		c.log.Errorw("Stripe API request failed",
			"verb", string(verb),
			"method", method,
			"id", id,
			"status", status,
			"error", err,
		)
		return nil, err
	}

	c.log.Infow("Stripe API request completed",
		"verb", string(verb),
		"method", method,
		"status", status,
		"object_id", resp.ID(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}
