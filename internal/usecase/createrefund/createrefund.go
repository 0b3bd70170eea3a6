package createrefund

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Xausdorf/swish-pay-hub/internal/domain/entity"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/payment"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/repository"
)

var ErrAmountExceedsPayment = errors.New("refund amount exceeds the unrefunded payment amount")

type Request struct {
	PaymentID             uuid.UUID
	PayerPaymentReference string
	Amount                decimal.Decimal
	Message               string
}

type UseCase struct {
	uow    repository.UnitOfWork
	client payment.Client
}

func NewUseCase(uow repository.UnitOfWork, client payment.Client) *UseCase {
	return &UseCase{uow: uow, client: client}
}

func (uc *UseCase) Execute(ctx context.Context, req Request) (*entity.Refund, error) {
	if err := entity.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}

	p, err := uc.uow.Payments().FindByID(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if err := p.Refundable(); err != nil {
		return nil, err
	}
	refunded, err := uc.refundedAmount(ctx, p.ID())
	if err != nil {
		return nil, err
	}
	if req.Amount.Add(refunded).GreaterThan(p.Amount()) {
		return nil, ErrAmountExceedsPayment
	}

	details := entity.RefundDetails{
		OriginalPaymentReference: p.PaymentReference(),
		PayerPaymentReference:    req.PayerPaymentReference,
		Amount:                   req.Amount,
		Message:                  req.Message,
	}
	created, err := uc.client.CreateRefund(ctx, payment.CreateRefundRequest{
		OriginalPaymentReference: details.OriginalPaymentReference,
		PayerPaymentReference:    details.PayerPaymentReference,
		Amount:                   details.Amount,
		Message:                  details.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("create swish refund: %w", err)
	}

	r := entity.NewRefund(p.ID(), created.SwishID, created.Location, details)
	if err := uc.uow.Refunds().Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// refundedAmount sums earlier refunds of a payment that have not failed.
// Pending refunds count, since Swish may still pay them out.
func (uc *UseCase) refundedAmount(ctx context.Context, paymentID uuid.UUID) (decimal.Decimal, error) {
	refunds, err := uc.uow.Refunds().FindByPaymentID(ctx, paymentID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, r := range refunds {
		if !r.Status().Failed() {
			total = total.Add(r.Amount())
		}
	}
	return total, nil
}
