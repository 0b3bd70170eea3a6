package payment

//go:generate mockgen -source=payment.go -destination=../../usecase/mocks/payment_mock.go -package=mocks

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Xausdorf/swish-pay-hub/internal/domain/entity"
)

type CreatePaymentRequest struct {
	PayeePaymentReference string
	PayerAlias            string
	Amount                decimal.Decimal
	Message               string
}

type CreatedPayment struct {
	SwishID      string
	Location     string
	RequestToken string
}

type CreateRefundRequest struct {
	OriginalPaymentReference string
	PayerPaymentReference    string
	Amount                   decimal.Decimal
	Message                  string
}

type CreatedRefund struct {
	SwishID  string
	Location string
}

// RejectedError is returned when Swish answered but refused the request.
type RejectedError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RejectedError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("rejected by swish (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("rejected by swish (status %d): %s %s", e.StatusCode, e.Code, e.Message)
}

// Permanent reports whether repeating the request would be refused again.
// A 5xx answer means Swish could not process it and a retry may succeed.
func (e *RejectedError) Permanent() bool {
	return e.StatusCode < 500
}

type Client interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatedPayment, error)
	GetPayment(ctx context.Context, swishID string) (*entity.StatusUpdate, error)
	CreateRefund(ctx context.Context, req CreateRefundRequest) (*CreatedRefund, error)
	GetRefund(ctx context.Context, swishID string) (*entity.StatusUpdate, error)
}
