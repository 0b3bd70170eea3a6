package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentDetails struct {
	PayeePaymentReference string
	PayerAlias            string
	Amount                decimal.Decimal
	Message               string
}

type PaymentRequest struct {
	id                    uuid.UUID
	swishID               string
	location              string
	requestToken          string
	payeePaymentReference string
	payerAlias            string
	amount                decimal.Decimal
	message               string
	status                Status
	paymentReference      string
	datePaid              *time.Time
	errorCode             string
	errorMessage          string
	createdAt             time.Time
	updatedAt             time.Time
}

func NewPaymentRequest(swishID, location, requestToken string, details PaymentDetails) *PaymentRequest {
	now := time.Now()
	return &PaymentRequest{
		id:                    uuid.New(),
		swishID:               swishID,
		location:              location,
		requestToken:          requestToken,
		payeePaymentReference: details.PayeePaymentReference,
		payerAlias:            details.PayerAlias,
		amount:                details.Amount,
		message:               details.Message,
		status:                StatusCreated,
		createdAt:             now,
		updatedAt:             now,
	}
}

// PaymentRequestSnapshot carries every stored field of a payment request.
type PaymentRequestSnapshot struct {
	ID                    uuid.UUID
	SwishID               string
	Location              string
	RequestToken          string
	PayeePaymentReference string
	PayerAlias            string
	Amount                decimal.Decimal
	Message               string
	Status                Status
	PaymentReference      string
	DatePaid              *time.Time
	ErrorCode             string
	ErrorMessage          string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func ReconstructPaymentRequest(s PaymentRequestSnapshot) *PaymentRequest {
	return &PaymentRequest{
		id:                    s.ID,
		swishID:               s.SwishID,
		location:              s.Location,
		requestToken:          s.RequestToken,
		payeePaymentReference: s.PayeePaymentReference,
		payerAlias:            s.PayerAlias,
		amount:                s.Amount,
		message:               s.Message,
		status:                s.Status,
		paymentReference:      s.PaymentReference,
		datePaid:              s.DatePaid,
		errorCode:             s.ErrorCode,
		errorMessage:          s.ErrorMessage,
		createdAt:             s.CreatedAt,
		updatedAt:             s.UpdatedAt,
	}
}

// ApplyUpdate records a status reported by Swish. It returns false when the
// update is ignored because nothing changed or the request is already final.
func (p *PaymentRequest) ApplyUpdate(u StatusUpdate) bool {
	if !transition(p.status, u.Status) {
		return false
	}
	p.status = u.Status
	if u.PaymentReference != "" {
		p.paymentReference = u.PaymentReference
	}
	if u.DatePaid != nil {
		p.datePaid = u.DatePaid
	}
	p.errorCode = u.ErrorCode
	p.errorMessage = u.ErrorMessage
	p.updatedAt = time.Now()
	return true
}

// Refundable reports whether a refund can reference this payment.
func (p *PaymentRequest) Refundable() error {
	if p.status != StatusPaid || p.paymentReference == "" {
		return ErrNotPaid
	}
	return nil
}

func (p *PaymentRequest) ID() uuid.UUID                 { return p.id }
func (p *PaymentRequest) SwishID() string               { return p.swishID }
func (p *PaymentRequest) Location() string              { return p.location }
func (p *PaymentRequest) RequestToken() string          { return p.requestToken }
func (p *PaymentRequest) PayeePaymentReference() string { return p.payeePaymentReference }
func (p *PaymentRequest) PayerAlias() string            { return p.payerAlias }
func (p *PaymentRequest) Amount() decimal.Decimal       { return p.amount }
func (p *PaymentRequest) Message() string               { return p.message }
func (p *PaymentRequest) Status() Status                { return p.status }
func (p *PaymentRequest) PaymentReference() string      { return p.paymentReference }
func (p *PaymentRequest) DatePaid() *time.Time          { return p.datePaid }
func (p *PaymentRequest) ErrorCode() string             { return p.errorCode }
func (p *PaymentRequest) ErrorMessage() string          { return p.errorMessage }
func (p *PaymentRequest) CreatedAt() time.Time          { return p.createdAt }
func (p *PaymentRequest) UpdatedAt() time.Time          { return p.updatedAt }
