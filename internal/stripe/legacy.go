package stripe

import (
	"context"
)

// LegacyClient простой клиент без накопления состояния: один вызов на платеж
type LegacyClient struct {
	requester Requester
}

// NewLegacyClient создает клиент поверх общего Requester
func NewLegacyClient(requester Requester) *LegacyClient {
	return &LegacyClient{requester: requester}
}

// Charge создает платеж в usd по данным карты. Поля не проверяются локально,
// проверку выполняет API.
func (l *LegacyClient) Charge(ctx context.Context, amount int64, cardNumber string, expMonth, expYear int, cvc string, metadata map[string]string) (Response, error) {
	params := Params{
		"amount":   amount,
		"currency": DefaultCurrency,
		"card": Params{
			"number":    cardNumber,
			"exp_month": expMonth,
			"exp_year":  expYear,
			"cvc":       cvc,
		},
	}
	if len(metadata) > 0 {
		params["metadata"] = metadata
	}

	return l.requester.Request(ctx, VerbPost, MethodCharges, params, "")
}
