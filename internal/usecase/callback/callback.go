package callback

import (
	"context"
	"fmt"

	"github.com/Xausdorf/swish-pay-hub/internal/domain/entity"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/repository"
)

type Request struct {
	SwishID string
	Update  entity.StatusUpdate
}

// UseCase applies the status Swish posts to the callback URL.
type UseCase struct {
	uow repository.UnitOfWork
}

func NewUseCase(uow repository.UnitOfWork) *UseCase {
	return &UseCase{uow: uow}
}

func (uc *UseCase) ExecutePayment(ctx context.Context, req Request) (*entity.PaymentRequest, error) {
	p, err := uc.uow.Payments().FindBySwishID(ctx, req.SwishID)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %w", req.SwishID, err)
	}
	if !p.ApplyUpdate(req.Update) {
		return p, nil
	}
	if err := uc.uow.Payments().Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *UseCase) ExecuteRefund(ctx context.Context, req Request) (*entity.Refund, error) {
	r, err := uc.uow.Refunds().FindBySwishID(ctx, req.SwishID)
	if err != nil {
		return nil, fmt.Errorf("refund %s: %w", req.SwishID, err)
	}
	if !r.ApplyUpdate(req.Update) {
		return r, nil
	}
	if err := uc.uow.Refunds().Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
