package getpayment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Xausdorf/swish-pay-hub/internal/domain/entity"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/payment"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/repository"
)

type UseCase struct {
	uow    repository.UnitOfWork
	client payment.Client
}

func NewUseCase(uow repository.UnitOfWork, client payment.Client) *UseCase {
	return &UseCase{uow: uow, client: client}
}

// Execute returns the stored payment request. A request that has not reached a
// final status is refreshed from Swish first.
func (uc *UseCase) Execute(ctx context.Context, id uuid.UUID) (*entity.PaymentRequest, error) {
	p, err := uc.uow.Payments().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status().Final() {
		return p, nil
	}

	update, err := uc.client.GetPayment(ctx, p.SwishID())
	if err != nil {
		return nil, fmt.Errorf("refresh payment %s: %w", p.SwishID(), err)
	}
	if !p.ApplyUpdate(*update) {
		return p, nil
	}
	if err := uc.uow.Payments().Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
