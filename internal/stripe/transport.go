package stripe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"strings"
	"time"
)

const (
	connectFailure     = "Could not connect to Stripe. Please check your internet connection and try again."
	certificateFailure = "Error during the request with the peer certificate or CA cert."
	unexpectedFailure  = "Unexpected error communicating with Stripe."
)

// Transport выполняет HTTP-обмен с API Stripe и возвращает сырое тело и код ответа.
// При сетевой ошибке тело не возвращается.
type Transport interface {
	Execute(ctx context.Context, verb Verb, method string, params Params, id string) ([]byte, int, error)
}

// HTTPTransport реализация Transport поверх net/http
type HTTPTransport struct {
	baseURL         string
	apiKey          string
	client          *http.Client
	clientUserAgent string
}

// clientUserAgent содержимое заголовка X-Stripe-Client-User-Agent
type clientUserAgent struct {
	BindingsVersion string `json:"bindings_version"`
	Lang            string `json:"lang"`
	LangVersion     string `json:"lang_version"`
	Publisher       string `json:"publisher"`
	Uname           string `json:"uname"`
}

// NewHTTPTransport создает транспорт с фиксированными таймаутами (30s на соединение, 90s на запрос)
func NewHTTPTransport(cfg Config) *HTTPTransport {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = APIBaseURL
	}

	dialer := &net.Dialer{
		Timeout:   ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if !cfg.VerifySSLCertificates {
		tlsConfig.InsecureSkipVerify = true // #nosec G402 -- opt-out через stripe.verifySslCertificates
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: ConnectTimeout,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
	}

	ua, _ := json.Marshal(clientUserAgent{
		BindingsVersion: BindingsVersion,
		Lang:            "go",
		LangVersion:     runtime.Version(),
		Publisher:       "dhoini",
		Uname:           runtime.GOOS + " " + runtime.GOARCH,
	})

	return &HTTPTransport{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Transport: transport,
			Timeout:   RequestTimeout,
		},
		clientUserAgent: string(ua),
	}
}

// Execute выполняет запрос к <base>/<method>[/<id>]
func (t *HTTPTransport) Execute(ctx context.Context, verb Verb, method string, params Params, id string) ([]byte, int, error) {
	httpMethod, err := verb.HTTPMethod()
	if err != nil {
		return nil, 0, err
	}

	endpoint := buildURL(t.baseURL, method, id)
	encoded := params.Encode()

	var body io.Reader
	if httpMethod == http.MethodPost {
		body = strings.NewReader(encoded)
	} else if encoded != "" {
		endpoint = endpoint + "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, endpoint, body)
	if err != nil {
		return nil, 0, newError(KindConfiguration, fmt.Sprintf("Configuration error: failed to create request: %v", err), 0, err)
	}

	req.Header.Set("X-Stripe-Client-User-Agent", t.clientUserAgent)
	req.Header.Set("User-Agent", "Stripe/v1 StripeChargeGo/"+BindingsVersion)
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Stripe-Version", APIVersion)
	if httpMethod == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, 0, networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, networkError(err)
	}

	return raw, resp.StatusCode, nil
}

// networkError приводит ошибку транспорта к единой категории с понятным описанием
func networkError(err error) *Error {
	return newError(KindNetwork, fmt.Sprintf("Network error: %s (%v)", networkCategory(err), err), 0, err)
}

func networkCategory(err error) string {
	var (
		verifyErr    *tls.CertificateVerificationError
		authorityErr x509.UnknownAuthorityError
		invalidErr   x509.CertificateInvalidError
		hostnameErr  x509.HostnameError
		dnsErr       *net.DNSError
		opErr        *net.OpError
		netErr       net.Error
	)

	switch {
	case errors.As(err, &verifyErr),
		errors.As(err, &authorityErr),
		errors.As(err, &invalidErr),
		errors.As(err, &hostnameErr):
		return certificateFailure
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &dnsErr):
		return connectFailure
	case errors.As(err, &netErr) && netErr.Timeout():
		return connectFailure
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return connectFailure
	default:
		return unexpectedFailure
	}
}
