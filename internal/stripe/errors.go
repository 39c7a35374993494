package stripe

import (
	"errors"
	"fmt"
)

// Kind категория ошибки клиента Stripe
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindNetwork
	KindMalformedResponse
	KindInvalidEnvelope
	KindInvalidRequest
	KindAuthentication
	KindCard
	KindAPI
	KindValidation
)

// String возвращает имя категории (используется в метриках и логах)
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindNetwork:
		return "network"
	case KindMalformedResponse:
		return "malformed_response"
	case KindInvalidEnvelope:
		return "invalid_envelope"
	case KindInvalidRequest:
		return "invalid_request"
	case KindAuthentication:
		return "authentication"
	case KindCard:
		return "card"
	case KindAPI:
		return "api"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Sentinel-ошибки для errors.Is: сравнение идет только по категории
var (
	ErrConfiguration     = &Error{Kind: KindConfiguration}
	ErrNetwork           = &Error{Kind: KindNetwork}
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse}
	ErrInvalidEnvelope   = &Error{Kind: KindInvalidEnvelope}
	ErrInvalidRequest    = &Error{Kind: KindInvalidRequest}
	ErrAuthentication    = &Error{Kind: KindAuthentication}
	ErrCard              = &Error{Kind: KindCard}
	ErrAPI               = &Error{Kind: KindAPI}
	ErrValidation        = &Error{Kind: KindValidation}
)

// Error единственный тип ошибки, который возвращает клиент.
// Message содержит префикс категории, например "Card error: card declined".
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	// APIMessage сообщение из тела ошибки Stripe без изменений
	APIMessage string
	Err        error
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("stripe %s error", e.Kind)
	}
	return e.Message
}

// Unwrap возвращает исходную ошибку
func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает категорию ошибки с sentinel-значением
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

func newError(kind Kind, message string, statusCode int, err error) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// KindOf возвращает категорию ошибки или 0, если это не ошибка клиента Stripe
func KindOf(err error) Kind {
	var stripeErr *Error
	if errors.As(err, &stripeErr) {
		return stripeErr.Kind
	}
	return 0
}
