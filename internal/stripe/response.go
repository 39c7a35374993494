package stripe

import (
	"encoding/json"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v81"
)

const noErrorDetails = "No additional details..."

// Response декодированный JSON-ответ API Stripe
type Response map[string]interface{}

// ID возвращает идентификатор объекта из ответа, если он есть
func (r Response) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Charge преобразует ответ в типизированную структуру stripe-go
func (r Response) Charge() (*stripeapi.Charge, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}

	var charge stripeapi.Charge
	if err := json.Unmarshal(raw, &charge); err != nil {
		return nil, fmt.Errorf("failed to decode charge: %w", err)
	}
	return &charge, nil
}

// Interpret разбирает тело ответа и классифицирует ошибки API по коду статуса
func Interpret(body []byte, statusCode int) (Response, error) {
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, malformedResponse(body, statusCode, err)
	}

	obj, isObject := decoded.(map[string]interface{})

	if statusCode >= 200 && statusCode < 300 {
		if !isObject {
			return nil, malformedResponse(body, statusCode, nil)
		}
		return Response(obj), nil
	}

	return nil, apiError(obj, statusCode)
}

func malformedResponse(body []byte, statusCode int, err error) *Error {
	return newError(
		KindMalformedResponse,
		fmt.Sprintf("Invalid response body from API (HTTP code %d): %s", statusCode, body),
		statusCode,
		err,
	)
}

// apiError строит ошибку по телу с полем error; obj == nil, если тело не является объектом
func apiError(obj map[string]interface{}, statusCode int) *Error {
	errObj, ok := obj["error"].(map[string]interface{})
	if !ok {
		return newError(KindInvalidEnvelope, fmt.Sprintf("Invalid response object from API (HTTP code %d)", statusCode), statusCode, nil)
	}

	message, _ := errObj["message"].(string)
	details := message
	if details == "" {
		details = noErrorDetails
	}

	var (
		kind   Kind
		prefix string
	)
	switch statusCode {
	case 400, 404:
		kind, prefix = KindInvalidRequest, "Invalid request"
	case 401:
		kind, prefix = KindAuthentication, "Authentication error"
	case 402:
		kind, prefix = KindCard, "Card error"
	default:
		kind, prefix = KindAPI, "General API Error"
	}

	e := newError(kind, prefix+": "+details, statusCode, nil)
	e.APIMessage = message
	return e
}
