package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RefundDetails struct {
	OriginalPaymentReference string
	PayerPaymentReference    string
	Amount                   decimal.Decimal
	Message                  string
}

type Refund struct {
	id                       uuid.UUID
	paymentID                uuid.UUID
	swishID                  string
	location                 string
	originalPaymentReference string
	payerPaymentReference    string
	amount                   decimal.Decimal
	message                  string
	status                   Status
	datePaid                 *time.Time
	errorCode                string
	errorMessage             string
	createdAt                time.Time
	updatedAt                time.Time
}

func NewRefund(paymentID uuid.UUID, swishID, location string, details RefundDetails) *Refund {
	now := time.Now()
	return &Refund{
		id:                       uuid.New(),
		paymentID:                paymentID,
		swishID:                  swishID,
		location:                 location,
		originalPaymentReference: details.OriginalPaymentReference,
		payerPaymentReference:    details.PayerPaymentReference,
		amount:                   details.Amount,
		message:                  details.Message,
		status:                   StatusCreated,
		createdAt:                now,
		updatedAt:                now,
	}
}

type RefundSnapshot struct {
	ID                       uuid.UUID
	PaymentID                uuid.UUID
	SwishID                  string
	Location                 string
	OriginalPaymentReference string
	PayerPaymentReference    string
	Amount                   decimal.Decimal
	Message                  string
	Status                   Status
	DatePaid                 *time.Time
	ErrorCode                string
	ErrorMessage             string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func ReconstructRefund(s RefundSnapshot) *Refund {
	return &Refund{
		id:                       s.ID,
		paymentID:                s.PaymentID,
		swishID:                  s.SwishID,
		location:                 s.Location,
		originalPaymentReference: s.OriginalPaymentReference,
		payerPaymentReference:    s.PayerPaymentReference,
		amount:                   s.Amount,
		message:                  s.Message,
		status:                   s.Status,
		datePaid:                 s.DatePaid,
		errorCode:                s.ErrorCode,
		errorMessage:             s.ErrorMessage,
		createdAt:                s.CreatedAt,
		updatedAt:                s.UpdatedAt,
	}
}

func (r *Refund) ApplyUpdate(u StatusUpdate) bool {
	if !transition(r.status, u.Status) {
		return false
	}
	r.status = u.Status
	if u.DatePaid != nil {
		r.datePaid = u.DatePaid
	}
	r.errorCode = u.ErrorCode
	r.errorMessage = u.ErrorMessage
	r.updatedAt = time.Now()
	return true
}

func (r *Refund) ID() uuid.UUID                    { return r.id }
func (r *Refund) PaymentID() uuid.UUID             { return r.paymentID }
func (r *Refund) SwishID() string                  { return r.swishID }
func (r *Refund) Location() string                 { return r.location }
func (r *Refund) OriginalPaymentReference() string { return r.originalPaymentReference }
func (r *Refund) PayerPaymentReference() string    { return r.payerPaymentReference }
func (r *Refund) Amount() decimal.Decimal          { return r.amount }
func (r *Refund) Message() string                  { return r.message }
func (r *Refund) Status() Status                   { return r.status }
func (r *Refund) DatePaid() *time.Time             { return r.datePaid }
func (r *Refund) ErrorCode() string                { return r.errorCode }
func (r *Refund) ErrorMessage() string             { return r.errorMessage }
func (r *Refund) CreatedAt() time.Time             { return r.createdAt }
func (r *Refund) UpdatedAt() time.Time             { return r.updatedAt }
