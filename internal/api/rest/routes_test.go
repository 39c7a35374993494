package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dhoini/stripe-charge/internal/api/rest/handlers"
	"github.com/Dhoini/stripe-charge/internal/config"
	"github.com/Dhoini/stripe-charge/internal/metrics"
	"github.com/Dhoini/stripe-charge/internal/stripe"
	"github.com/Dhoini/stripe-charge/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRequester struct{}

func (stubRequester) Request(context.Context, stripe.Verb, string, stripe.Params, string) (stripe.Response, error) {
	return stripe.Response{"id": "ch_1"}, nil
}

func newRouter(t *testing.T, jwtSecret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = jwtSecret

	registry := prometheus.NewRegistry()
	h := handlers.NewChargeHandler(stubRequester{}, nil, metrics.NewChargeMetrics(registry), logger.NewNop())
	return SetupRouter(logger.NewNop(), registry, cfg, h)
}

func serve(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutesWithoutAuth(t *testing.T) {
	r := newRouter(t, "")

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/charges/ch_1", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/v1/charges/ch_1", `{"description":"x"}`, "").Code)
	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/api/v1/legacy/charges", `{"amount":100}`, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodDelete, "/api/v1/charges/ch_1", "", "").Code)
}

func TestRoutesRequireTokenWhenSecretSet(t *testing.T) {
	r := newRouter(t, "secret")

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/charges/ch_1", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "", "").Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/charges/ch_1", "", token).Code)
}

func TestMetricsEndpointExposesChargeMetrics(t *testing.T) {
	r := newRouter(t, "")

	body := `{"amount":2000,"card":{"number":"4242424242424242","exp_month":12,"exp_year":2030,"cvc":"123"}}`
	require.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/api/v1/charges", body, "").Code)

	w := serve(r, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `charges_created_total{currency="usd"} 1`)
}
