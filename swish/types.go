package swish

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

// SEK is the only currency Swish accepts.
const SEK Currency = "SEK"

type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusPaid      Status = "PAID"
	StatusDeclined  Status = "DECLINED"
	StatusError     Status = "ERROR"
	StatusCancelled Status = "CANCELLED"
	StatusValidated Status = "VALIDATED"
	StatusInitiated Status = "INITIATED"
	StatusDebited   Status = "DEBITED"
)

// Final reports whether Swish will not move the request to another status.
func (s Status) Final() bool {
	switch s {
	case StatusPaid, StatusDeclined, StatusError, StatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentParams describes a new payment request. PayeeAlias defaults to the
// client's merchant alias and Currency to SEK.
type PaymentParams struct {
	PayeePaymentReference string
	CallbackURL           string
	PayerAlias            string
	PayeeAlias            string
	Amount                decimal.Decimal
	Currency              Currency
	Message               string
}

type paymentParamsJSON struct {
	PayeePaymentReference string   `json:"payeePaymentReference,omitempty"`
	CallbackURL           string   `json:"callbackUrl"`
	PayerAlias            string   `json:"payerAlias,omitempty"`
	PayeeAlias            string   `json:"payeeAlias"`
	Amount                string   `json:"amount"`
	Currency              Currency `json:"currency"`
	Message               string   `json:"message,omitempty"`
}

func (p PaymentParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(paymentParamsJSON{
		PayeePaymentReference: p.PayeePaymentReference,
		CallbackURL:           p.CallbackURL,
		PayerAlias:            p.PayerAlias,
		PayeeAlias:            p.PayeeAlias,
		Amount:                p.Amount.StringFixed(2),
		Currency:              currencyOrDefault(p.Currency),
		Message:               p.Message,
	})
}

func (p PaymentParams) Validate() error {
	if err := validateAmount(p.Amount); err != nil {
		return err
	}
	if p.PayeeAlias == "" {
		return &ValidationError{Field: "payeeAlias", Reason: "is required"}
	}
	if p.CallbackURL == "" {
		return &ValidationError{Field: "callbackUrl", Reason: "is required"}
	}
	return nil
}

// RefundParams describes a refund of a paid payment. PayerAlias defaults to the
// client's merchant alias and Currency to SEK.
type RefundParams struct {
	PayerPaymentReference    string
	OriginalPaymentReference string
	PaymentReference         string
	CallbackURL              string
	PayerAlias               string
	PayeeAlias               string
	Amount                   decimal.Decimal
	Currency                 Currency
	Message                  string
}

type refundParamsJSON struct {
	PayerPaymentReference    string   `json:"payerPaymentReference,omitempty"`
	OriginalPaymentReference string   `json:"originalPaymentReference"`
	PaymentReference         string   `json:"paymentReference,omitempty"`
	CallbackURL              string   `json:"callbackUrl"`
	PayerAlias               string   `json:"payerAlias"`
	PayeeAlias               string   `json:"payeeAlias,omitempty"`
	Amount                   string   `json:"amount"`
	Currency                 Currency `json:"currency"`
	Message                  string   `json:"message,omitempty"`
}

func (p RefundParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(refundParamsJSON{
		PayerPaymentReference:    p.PayerPaymentReference,
		OriginalPaymentReference: p.OriginalPaymentReference,
		PaymentReference:         p.PaymentReference,
		CallbackURL:              p.CallbackURL,
		PayerAlias:               p.PayerAlias,
		PayeeAlias:               p.PayeeAlias,
		Amount:                   p.Amount.StringFixed(2),
		Currency:                 currencyOrDefault(p.Currency),
		Message:                  p.Message,
	})
}

func (p RefundParams) Validate() error {
	if err := validateAmount(p.Amount); err != nil {
		return err
	}
	if p.OriginalPaymentReference == "" {
		return &ValidationError{Field: "originalPaymentReference", Reason: "is required"}
	}
	if p.PayerAlias == "" {
		return &ValidationError{Field: "payerAlias", Reason: "is required"}
	}
	if p.CallbackURL == "" {
		return &ValidationError{Field: "callbackUrl", Reason: "is required"}
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !amount.Equal(amount.Round(2)) {
		return &ValidationError{Field: "amount", Reason: "must have at most two decimals"}
	}
	return nil
}

func currencyOrDefault(c Currency) Currency {
	if c == "" {
		return SEK
	}
	return c
}

// CreatedPayment is the result of a successful CreatePayment. RequestToken is
// only set for m-commerce requests (no payer alias).
type CreatedPayment struct {
	ID           string `json:"id"`
	Location     string `json:"location"`
	RequestToken string `json:"requestToken,omitempty"`
}

type CreatedRefund struct {
	ID       string `json:"id"`
	Location string `json:"location"`
}

// Payment is a payment request as returned by Swish and posted to the callback URL.
type Payment struct {
	ID                    string          `json:"id"`
	PayeePaymentReference string          `json:"payeePaymentReference,omitempty"`
	PaymentReference      string          `json:"paymentReference,omitempty"`
	CallbackURL           string          `json:"callbackUrl,omitempty"`
	PayerAlias            string          `json:"payerAlias,omitempty"`
	PayeeAlias            string          `json:"payeeAlias,omitempty"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              Currency        `json:"currency"`
	Message               string          `json:"message,omitempty"`
	Status                Status          `json:"status,omitempty"`
	DateCreated           time.Time       `json:"dateCreated"`
	DatePaid              *time.Time      `json:"datePaid,omitempty"`
	ErrorCode             ErrorCode       `json:"errorCode,omitempty"`
	ErrorMessage          string          `json:"errorMessage,omitempty"`
}

// Refund is a refund as returned by Swish and posted to the callback URL.
type Refund struct {
	ID                       string          `json:"id"`
	PaymentReference         string          `json:"paymentReference,omitempty"`
	PayerPaymentReference    string          `json:"payerPaymentReference,omitempty"`
	OriginalPaymentReference string          `json:"originalPaymentReference,omitempty"`
	CallbackURL              string          `json:"callbackUrl,omitempty"`
	PayerAlias               string          `json:"payerAlias,omitempty"`
	PayeeAlias               string          `json:"payeeAlias,omitempty"`
	Amount                   decimal.Decimal `json:"amount"`
	Currency                 Currency        `json:"currency"`
	Message                  string          `json:"message,omitempty"`
	Status                   Status          `json:"status,omitempty"`
	DateCreated              time.Time       `json:"dateCreated"`
	DatePaid                 *time.Time      `json:"datePaid,omitempty"`
	ErrorCode                ErrorCode       `json:"errorCode,omitempty"`
	ErrorMessage             string          `json:"errorMessage,omitempty"`
	AdditionalInformation    string          `json:"additionalInformation,omitempty"`
}

func (p *Payment) UnmarshalJSON(data []byte) error {
	type plain Payment
	aux := struct {
		*plain
		DateCreated timestamp  `json:"dateCreated"`
		DatePaid    *timestamp `json:"datePaid"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.DateCreated = time.Time(aux.DateCreated)
	p.DatePaid = aux.DatePaid.timePtr()
	return nil
}

func (r *Refund) UnmarshalJSON(data []byte) error {
	type plain Refund
	aux := struct {
		*plain
		DateCreated timestamp  `json:"dateCreated"`
		DatePaid    *timestamp `json:"datePaid"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.DateCreated = time.Time(aux.DateCreated)
	r.DatePaid = aux.DatePaid.timePtr()
	return nil
}

// timestampLayouts are tried in order. Swish documents RFC 3339, but offsets
// without a colon and timestamps without a zone have been seen in the wild.
// A timestamp without a zone is taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
}

type timestamp time.Time

func (t *timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = timestamp(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func (t *timestamp) timePtr() *time.Time {
	if t == nil || time.Time(*t).IsZero() {
		return nil
	}
	v := time.Time(*t)
	return &v
}
