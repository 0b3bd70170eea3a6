package generateqr

import (
	"context"

	"github.com/google/uuid"

	"github.com/Xausdorf/swish-pay-hub/internal/domain/entity"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/qrcode"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/repository"
)

type UseCase struct {
	uow       repository.UnitOfWork
	generator qrcode.Generator
}

func NewUseCase(uow repository.UnitOfWork, generator qrcode.Generator) *UseCase {
	return &UseCase{uow: uow, generator: generator}
}

func (uc *UseCase) Execute(ctx context.Context, paymentID uuid.UUID) ([]byte, error) {
	p, err := uc.uow.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.RequestToken() == "" {
		return nil, entity.ErrNoRequestToken
	}
	return uc.generator.Generate(qrcode.QRData{RequestToken: p.RequestToken()})
}
