package stripe

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// BindingsVersion версия клиентской библиотеки, передается в User-Agent
	BindingsVersion = "0.5.0"

	// APIVersion фиксированная версия API Stripe
	APIVersion = "2014-01-31"

	// APIBaseURL базовый URL для всех вызовов API
	APIBaseURL = "https://api.stripe.com/v1"

	// MethodCharges ресурс платежей
	MethodCharges = "charges"

	// ConnectTimeout таймаут на установку соединения
	ConnectTimeout = 30 * time.Second

	// RequestTimeout общий таймаут запроса
	RequestTimeout = 90 * time.Second
)

// Verb HTTP-метод запроса к API
type Verb string

const (
	VerbGet    Verb = "get"
	VerbPost   Verb = "post"
	VerbDelete Verb = "delete"
)

// HTTPMethod возвращает метод в форме, принятой в net/http
func (v Verb) HTTPMethod() (string, error) {
	switch Verb(strings.ToLower(string(v))) {
	case VerbGet:
		return "GET", nil
	case VerbPost:
		return "POST", nil
	case VerbDelete:
		return "DELETE", nil
	default:
		return "", newError(KindConfiguration, fmt.Sprintf("Configuration error: Unknown API request type %s", string(v)), 0, nil)
	}
}

// Config конфигурация для клиента Stripe
type Config struct {
	APIKey string
	// VerifySSLCertificates включает проверку сертификата сервера. Отключать только осознанно.
	VerifySSLCertificates bool
	// LogActivity включает логирование обращений к API
	LogActivity bool
	// BaseURL переопределяет APIBaseURL (используется в тестах)
	BaseURL string
}

// DefaultConfig возвращает конфигурацию с проверкой сертификатов и без логирования
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:                apiKey,
		VerifySSLCertificates: true,
	}
}

// buildURL собирает адрес вида <base>/<method>[/<id>]; id экранируется как один сегмент пути
func buildURL(base, method, id string) string {
	u := strings.TrimRight(base, "/") + "/" + method
	if id != "" {
		u = u + "/" + url.PathEscape(id)
	}
	return u
}
