package handlers

import (
	"errors"
	"net/http"

	"github.com/Dhoini/stripe-charge/internal/domain"
	"github.com/Dhoini/stripe-charge/internal/stripe"
)

// StatusFor сопоставляет ошибку клиента Stripe с HTTP статусом ответа
func StatusFor(err error) int {
	switch stripe.KindOf(err) {
	case stripe.KindValidation:
		return http.StatusUnprocessableEntity
	case stripe.KindInvalidRequest:
		return http.StatusBadRequest
	case stripe.KindCard:
		return http.StatusPaymentRequired
	case stripe.KindNetwork:
		return http.StatusServiceUnavailable
	// ошибка аутентификации относится к нашему ключу, а не к клиенту
	case stripe.KindAuthentication, stripe.KindMalformedResponse, stripe.KindInvalidEnvelope, stripe.KindAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorDetails возвращает ошибки по полям для ответа 422
func errorDetails(err error) map[string]string {
	var fieldErrs domain.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field] = fe.Message
	}
	return details
}
