package getrefund

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

func (uc *UseCase) Execute(ctx context.Context, id uuid.UUID) (*entity.Refund, error) {
	r, err := uc.uow.Refunds().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status().Final() {
		return r, nil
	}

	update, err := uc.client.GetRefund(ctx, r.SwishID())
	if err != nil {
		return nil, fmt.Errorf("refresh refund %s: %w", r.SwishID(), err)
	}
	if !r.ApplyUpdate(*update) {
		return r, nil
	}
	if err := uc.uow.Refunds().Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
