package handlers

import (
	"context"
	"net/http"

	"github.com/Dhoini/stripe-charge/internal/kafka/producer"
	"github.com/Dhoini/stripe-charge/internal/metrics"
	"github.com/Dhoini/stripe-charge/internal/stripe"
	"github.com/Dhoini/stripe-charge/pkg/logger"
	"github.com/Dhoini/stripe-charge/pkg/req"
	"github.com/Dhoini/stripe-charge/pkg/res"
	"github.com/gin-gonic/gin"
)

// CardRequest данные карты и адрес плательщика
type CardRequest struct {
	Number       string `json:"number"`
	ExpMonth     *int   `json:"exp_month" binding:"omitempty,min=1,max=12"`
	ExpYear      *int   `json:"exp_year" binding:"omitempty,min=1970"`
	CVC          string `json:"cvc"`
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"address_city"`
	State        string `json:"address_state"`
	Zip          string `json:"address_zip"`
	Country      string `json:"address_country"`
}

// CreateChargeRequest тело запроса на создание платежа.
// Сумма задается либо amount в центах, либо парой amount_dollars/amount_cents.
type CreateChargeRequest struct {
	Amount               *int64            `json:"amount"`
	AmountDollars        *int64            `json:"amount_dollars"`
	AmountCents          *int64            `json:"amount_cents"`
	Currency             string            `json:"currency"`
	Card                 CardRequest       `json:"card"`
	Capture              *bool             `json:"capture"`
	Description          string            `json:"description"`
	StatementDescription string            `json:"statement_description"`
	ReceiptEmail         string            `json:"receipt_email"`
	Metadata             map[string]string `json:"metadata"`
}

// UpdateChargeRequest тело запроса на обновление платежа
type UpdateChargeRequest struct {
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

// LegacyChargeRequest тело запроса для упрощенного клиента
type LegacyChargeRequest struct {
	Amount     int64             `json:"amount"`
	CardNumber string            `json:"card_number"`
	ExpMonth   int               `json:"exp_month"`
	ExpYear    int               `json:"exp_year"`
	CVC        string            `json:"cvc"`
	Metadata   map[string]string `json:"metadata"`
}

// ChargeHandler обработчик для платежей Stripe
type ChargeHandler struct {
	requester stripe.Requester
	legacy    *stripe.LegacyClient
	producer  producer.ChargeProducer
	metrics   metrics.ChargeMetrics
	log       *logger.Logger
}

// NewChargeHandler создает новый обработчик платежей
func NewChargeHandler(requester stripe.Requester, events producer.ChargeProducer, chargeMetrics metrics.ChargeMetrics, log *logger.Logger) *ChargeHandler {
	if events == nil {
		events = producer.NewNopChargeProducer()
	}
	if chargeMetrics == nil {
		chargeMetrics = metrics.NewNopChargeMetrics()
	}
	return &ChargeHandler{
		requester: requester,
		legacy:    stripe.NewLegacyClient(requester),
		producer:  events,
		metrics:   chargeMetrics,
		log:       log,
	}
}

// CreateCharge создает новый платеж
func (h *ChargeHandler) CreateCharge(c *gin.Context) {
	body, ok := req.HandleBody[CreateChargeRequest](c, h.log)
	if !ok {
		return
	}

	charge := h.buildCharge(body)
	resp, err := charge.Create(c.Request.Context())
	if err != nil {
		h.fail(c, "create", charge.Currency(), err)
		return
	}

	amount, _ := charge.Amount()
	h.metrics.IncChargeCreated(charge.Currency())
	h.metrics.ObserveChargeAmount(amount, charge.Currency())
	h.publish(c.Request.Context(), producer.EventChargeCreated, resp)

	h.log.Infow("Charge created", "charge_id", charge.ID(), "amount", amount, "currency", charge.Currency())
	c.JSON(http.StatusCreated, resp)
}

// GetCharge возвращает платеж по ID
func (h *ChargeHandler) GetCharge(c *gin.Context) {
	charge := stripe.NewCharge(h.requester, h.log).SetID(c.Param("id"))

	resp, err := charge.Retrieve(c.Request.Context())
	if err != nil {
		h.fail(c, "retrieve", charge.Currency(), err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateCharge обновляет описание и метаданные платежа
func (h *ChargeHandler) UpdateCharge(c *gin.Context) {
	body, ok := req.HandleBody[UpdateChargeRequest](c, h.log)
	if !ok {
		return
	}

	charge := stripe.NewCharge(h.requester, h.log).
		SetID(c.Param("id")).
		SetDescription(body.Description).
		SetMetadata(body.Metadata)

	resp, err := charge.Update(c.Request.Context())
	if err != nil {
		h.fail(c, "update", charge.Currency(), err)
		return
	}

	h.publish(c.Request.Context(), producer.EventChargeUpdated, resp)

	h.log.Infow("Charge updated", "charge_id", charge.ID())
	c.JSON(http.StatusOK, resp)
}

// CreateLegacyCharge создает платеж через упрощенный клиент без локальной валидации
func (h *ChargeHandler) CreateLegacyCharge(c *gin.Context) {
	body, ok := req.HandleBody[LegacyChargeRequest](c, h.log)
	if !ok {
		return
	}

	resp, err := h.legacy.Charge(c.Request.Context(), body.Amount, body.CardNumber, body.ExpMonth, body.ExpYear, body.CVC, body.Metadata)
	if err != nil {
		h.fail(c, "legacy_create", stripe.DefaultCurrency, err)
		return
	}

	h.metrics.IncChargeCreated(stripe.DefaultCurrency)
	h.metrics.ObserveChargeAmount(body.Amount, stripe.DefaultCurrency)
	h.publish(c.Request.Context(), producer.EventChargeCreated, resp)

	h.log.Infow("Legacy charge created", "charge_id", resp.ID(), "amount", body.Amount)
	c.JSON(http.StatusCreated, resp)
}

func (h *ChargeHandler) buildCharge(body *CreateChargeRequest) *stripe.Charge {
	charge := stripe.NewCharge(h.requester, h.log)

	switch {
	case body.Amount != nil:
		charge.SetAmount(*body.Amount)
	case body.AmountDollars != nil || body.AmountCents != nil:
		charge.SetAmountParts(body.AmountDollars, body.AmountCents)
	}
	if body.Currency != "" {
		charge.SetCurrency(body.Currency)
	}
	if body.Capture != nil {
		charge.SetCapture(*body.Capture)
	}

	card := body.Card
	charge.SetCardNumber(card.Number).
		SetCVC(card.CVC).
		SetName(card.Name).
		SetAddressLine1(card.AddressLine1).
		SetAddressLine2(card.AddressLine2).
		SetCity(card.City).
		SetState(card.State).
		SetZip(card.Zip).
		SetCountry(card.Country).
		SetDescription(body.Description).
		SetStatementDescription(body.StatementDescription).
		SetReceiptEmail(body.ReceiptEmail).
		SetMetadata(body.Metadata)
	if card.ExpMonth != nil {
		charge.SetExpirationMonth(*card.ExpMonth)
	}
	if card.ExpYear != nil {
		charge.SetExpirationYear(*card.ExpYear)
	}

	return charge
}

func (h *ChargeHandler) publish(ctx context.Context, eventType string, resp stripe.Response) {
	var err error
	switch eventType {
	case producer.EventChargeUpdated:
		err = h.producer.PublishChargeUpdated(ctx, resp)
	default:
		err = h.producer.PublishChargeCreated(ctx, resp)
	}
	if err != nil {
		h.log.Errorw("Failed to publish charge event", "event_type", eventType, "charge_id", resp.ID(), "error", err)
	}
}

func (h *ChargeHandler) fail(c *gin.Context, operation, currency string, err error) {
	status := StatusFor(err)
	kind := stripe.KindOf(err)
	h.metrics.IncChargeFailed(currency, kind.String())

	if status >= http.StatusInternalServerError {
		h.log.Errorw("Charge operation failed", "operation", operation, "kind", kind.String(), "error", err)
	} else {
		h.log.Warnw("Charge operation rejected", "operation", operation, "kind", kind.String(), "error", err)
	}

	var details any
	if d := errorDetails(err); len(d) > 0 {
		details = d
	}
	res.Error(c, status, err.Error(), details)
}
