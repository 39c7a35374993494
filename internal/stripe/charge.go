package stripe

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/Dhoini/stripe-charge/internal/domain"
	"github.com/Dhoini/stripe-charge/pkg/logger"
	"github.com/go-playground/validator/v10"
)

const (
	// DefaultCurrency валюта по умолчанию
	DefaultCurrency = "usd"

	// CardNumberLength допустимая длина номера карты
	CardNumberLength = 16

	// StatementDescriptionMaxLength ограничение Stripe на текст в выписке
	StatementDescriptionMaxLength = 15
)

var (
	validate = validator.New()

	// chargeIDPattern допустимый формат идентификатора объекта Stripe
	chargeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// Charge накапливает параметры платежа и выполняет операции create/retrieve/update.
//
// Сеттеры проверяют значение сразу: некорректное значение не сохраняется,
// а ошибка доступна через Err и возвращается любой терминальной операцией.
// Charge не предназначен для одновременного использования из нескольких горутин.
type Charge struct {
	requester Requester
	log       *logger.Logger

	id                   string
	amount               *int64
	currency             string
	cardNumber           string
	expMonth             *int
	expYear              *int
	cvc                  string
	name                 string
	addressLine1         string
	addressLine2         string
	city                 string
	state                string
	zip                  string
	country              string
	capture              bool
	description          string
	statementDescription string
	receiptEmail         string
	metadata             map[string]string

	errs     domain.ValidationErrors
	response Response
}

// NewCharge создает пустой платеж: валюта usd, capture включен
func NewCharge(requester Requester, log *logger.Logger) *Charge {
	if log == nil {
		log = logger.NewNop()
	}
	return &Charge{
		requester: requester,
		log:       log,
		currency:  DefaultCurrency,
		capture:   true,
	}
}

// SetID задает идентификатор существующего платежа; пустая строка сбрасывает значение
func (c *Charge) SetID(id string) *Charge {
	id = strings.TrimSpace(id)
	if id != "" && !chargeIDPattern.MatchString(id) {
		return c.fail("id", "must contain only letters, digits and underscores")
	}
	c.id = id
	return c.ok("id")
}

// SetAmount задает сумму в минимальных единицах валюты
func (c *Charge) SetAmount(amount int64) *Charge {
	if amount < 0 {
		return c.fail("amount", "must not be negative")
	}
	c.amount = &amount
	return c.ok("amount")
}

// SetAmountParts задает сумму из долларов и центов. Переданные части полностью
// заменяют прежнюю сумму; если обе части nil, сумма сбрасывается.
func (c *Charge) SetAmountParts(dollars, cents *int64) *Charge {
	if dollars == nil && cents == nil {
		c.amount = nil
		return c.ok("amount")
	}

	var total int64
	if dollars != nil {
		if *dollars > math.MaxInt64/100 || *dollars < math.MinInt64/100 {
			return c.fail("amount", "is out of range")
		}
		total = *dollars * 100
	}
	if cents != nil {
		if (*cents > 0 && total > math.MaxInt64-*cents) || (*cents < 0 && total < math.MinInt64-*cents) {
			return c.fail("amount", "is out of range")
		}
		total += *cents
	}
	return c.SetAmount(total)
}

// SetCurrency задает трехбуквенный код валюты
func (c *Charge) SetCurrency(currency string) *Charge {
	if err := validate.Var(currency, "len=3,alpha"); err != nil {
		return c.fail("currency", "must be a 3-letter currency code")
	}
	c.currency = strings.ToLower(currency)
	return c.ok("currency")
}

// SetCardNumber задает номер карты; пустая строка сбрасывает значение
func (c *Charge) SetCardNumber(number string) *Charge {
	if number != "" && len(number) != CardNumberLength {
		return c.fail("card_number", "must be exactly 16 characters")
	}
	c.cardNumber = number
	return c.ok("card_number")
}

// SetExpirationMonth задает месяц окончания срока действия карты
func (c *Charge) SetExpirationMonth(month int) *Charge {
	c.expMonth = &month
	return c
}

// SetExpirationYear задает год окончания срока действия карты
func (c *Charge) SetExpirationYear(year int) *Charge {
	c.expYear = &year
	return c
}

// SetCVC задает код CVC
func (c *Charge) SetCVC(cvc string) *Charge {
	c.cvc = cvc
	return c
}

// SetName задает имя держателя карты
func (c *Charge) SetName(name string) *Charge {
	c.name = name
	return c
}

func (c *Charge) SetAddressLine1(line string) *Charge {
	c.addressLine1 = line
	return c
}

func (c *Charge) SetAddressLine2(line string) *Charge {
	c.addressLine2 = line
	return c
}

func (c *Charge) SetCity(city string) *Charge {
	c.city = city
	return c
}

func (c *Charge) SetState(state string) *Charge {
	c.state = state
	return c
}

func (c *Charge) SetZip(zip string) *Charge {
	c.zip = zip
	return c
}

func (c *Charge) SetCountry(country string) *Charge {
	c.country = country
	return c
}

// SetCapture определяет, списываются ли средства сразу или только авторизуются
func (c *Charge) SetCapture(capture bool) *Charge {
	c.capture = capture
	return c
}

func (c *Charge) SetDescription(description string) *Charge {
	c.description = description
	return c
}

// SetStatementDescription задает текст для выписки, обрезая его до 15 символов
func (c *Charge) SetStatementDescription(description string) *Charge {
	runes := []rune(description)
	if len(runes) > StatementDescriptionMaxLength {
		runes = runes[:StatementDescriptionMaxLength]
	}
	c.statementDescription = string(runes)
	return c
}

// SetReceiptEmail задает адрес для чека; пустая строка сбрасывает значение
func (c *Charge) SetReceiptEmail(email string) *Charge {
	if email != "" {
		if err := validate.Var(email, "email"); err != nil {
			return c.fail("receipt_email", "must be a valid email address")
		}
	}
	c.receiptEmail = email
	return c.ok("receipt_email")
}

// SetMetadata заменяет метаданные; nil очищает их
func (c *Charge) SetMetadata(metadata map[string]string) *Charge {
	if metadata == nil {
		c.metadata = nil
		return c.ok("metadata")
	}

	copied := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if k == "" {
			return c.fail("metadata", "keys must not be empty")
		}
		copied[k] = v
	}
	c.metadata = copied
	return c.ok("metadata")
}

// AddMetadata добавляет одну пару ключ-значение
func (c *Charge) AddMetadata(key, value string) *Charge {
	if key == "" {
		return c.fail("metadata", "keys must not be empty")
	}
	if c.metadata == nil {
		c.metadata = make(map[string]string)
	}
	c.metadata[key] = value
	return c.ok("metadata")
}

func (c *Charge) ID() string { return c.id }

// Amount возвращает сумму и признак того, что она задана
func (c *Charge) Amount() (int64, bool) {
	if c.amount == nil {
		return 0, false
	}
	return *c.amount, true
}

func (c *Charge) Currency() string             { return c.currency }
func (c *Charge) CardNumber() string           { return c.cardNumber }
func (c *Charge) Capture() bool                { return c.capture }
func (c *Charge) Description() string          { return c.description }
func (c *Charge) StatementDescription() string { return c.statementDescription }
func (c *Charge) ReceiptEmail() string         { return c.receiptEmail }

// Metadata возвращает копию метаданных
func (c *Charge) Metadata() map[string]string {
	if c.metadata == nil {
		return nil
	}
	out := make(map[string]string, len(c.metadata))
	for k, v := range c.metadata {
		out[k] = v
	}
	return out
}

// Response возвращает ответ последней успешной операции
func (c *Charge) Response() Response {
	return c.response
}

// Err возвращает ошибки валидации, накопленные сеттерами
func (c *Charge) Err() error {
	if !c.errs.HasErrors() {
		return nil
	}
	errs := make(domain.ValidationErrors, len(c.errs))
	copy(errs, c.errs)
	return validationError(errs)
}

// Create создает платеж (POST /v1/charges)
func (c *Charge) Create(ctx context.Context) (Response, error) {
	if err := c.Err(); err != nil {
		return nil, err
	}

	var missing domain.ValidationErrors
	if c.amount == nil {
		missing.Add("amount", "is required")
	}
	if c.cardNumber == "" {
		missing.Add("card_number", "is required")
	}
	if c.expMonth == nil {
		missing.Add("exp_month", "is required")
	}
	if c.expYear == nil {
		missing.Add("exp_year", "is required")
	}
	if c.cvc == "" {
		missing.Add("cvc", "is required")
	}
	if missing.HasErrors() {
		c.log.Warnw("Charge is incomplete", "fields", missing.Fields())
		return nil, validationError(missing)
	}

	resp, err := c.requester.Request(ctx, VerbPost, MethodCharges, c.createParams(), "")
	if err != nil {
		return nil, err
	}

	c.response = resp
	if id := resp.ID(); id != "" {
		c.id = id
	}
	return resp, nil
}

// Retrieve получает платеж по ранее заданному идентификатору
func (c *Charge) Retrieve(ctx context.Context) (Response, error) {
	if msg := c.errs.GetByField("id"); msg != "" {
		return nil, validationError(domain.ValidationErrors{{Field: "id", Message: msg}})
	}
	if c.id == "" {
		return nil, missingID()
	}

	resp, err := c.requester.Request(ctx, VerbGet, MethodCharges, nil, c.id)
	if err != nil {
		return nil, err
	}

	c.response = resp
	return resp, nil
}

// Update отправляет описание и метаданные существующего платежа
func (c *Charge) Update(ctx context.Context) (Response, error) {
	if err := c.Err(); err != nil {
		return nil, err
	}
	if c.id == "" {
		return nil, missingID()
	}

	params := Params{}
	if c.description != "" {
		params["description"] = c.description
	}
	if len(c.metadata) > 0 {
		params["metadata"] = c.metadata
	}

	resp, err := c.requester.Request(ctx, VerbPost, MethodCharges, params, c.id)
	if err != nil {
		return nil, err
	}

	c.response = resp
	return resp, nil
}

func (c *Charge) createParams() Params {
	card := Params{
		"number":    c.cardNumber,
		"exp_month": *c.expMonth,
		"exp_year":  *c.expYear,
		"cvc":       c.cvc,
	}
	optional := map[string]string{
		"name":            c.name,
		"address_line1":   c.addressLine1,
		"address_line2":   c.addressLine2,
		"address_city":    c.city,
		"address_state":   c.state,
		"address_zip":     c.zip,
		"address_country": c.country,
	}
	for k, v := range optional {
		if v != "" {
			card[k] = v
		}
	}

	params := Params{
		"amount":   *c.amount,
		"currency": c.currency,
		"capture":  c.capture,
		"card":     card,
	}
	if c.description != "" {
		params["description"] = c.description
	}
	if len(c.metadata) > 0 {
		params["metadata"] = c.metadata
	}
	if c.statementDescription != "" {
		params["statement_description"] = c.statementDescription
	}
	if c.receiptEmail != "" {
		params["receipt_email"] = c.receiptEmail
	}
	return params
}

func (c *Charge) fail(field, message string) *Charge {
	c.log.Warnw("Invalid charge field", "field", field, "reason", message)
	c.clear(field)
	c.errs.Add(field, message)
	return c
}

func (c *Charge) ok(field string) *Charge {
	c.clear(field)
	return c
}

// clear убирает ранее записанную ошибку поля после успешной установки значения
func (c *Charge) clear(field string) {
	kept := c.errs[:0]
	for _, e := range c.errs {
		if e.Field != field {
			kept = append(kept, e)
		}
	}
	c.errs = kept
}

func validationError(errs domain.ValidationErrors) *Error {
	return newError(KindValidation, "Validation error: "+strings.TrimPrefix(errs.Error(), "validation failed: "), 0, errs)
}

func missingID() *Error {
	return newError(KindValidation, "Validation error: "+domain.ErrMissingChargeID.Error(), 0, domain.ErrMissingChargeID)
}
