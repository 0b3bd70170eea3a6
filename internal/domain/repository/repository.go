package repository

//go:generate mockgen -source=repository.go -destination=../../usecase/mocks/repository_mock.go -package=mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/Xausdorf/swish-pay-hub/internal/domain/entity"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *entity.PaymentRequest) error
	Update(ctx context.Context, p *entity.PaymentRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentRequest, error)
	FindBySwishID(ctx context.Context, swishID string) (*entity.PaymentRequest, error)
}

type RefundRepository interface {
	Create(ctx context.Context, r *entity.Refund) error
	Update(ctx context.Context, r *entity.Refund) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Refund, error)
	FindBySwishID(ctx context.Context, swishID string) (*entity.Refund, error)
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*entity.Refund, error)
}

type IdempotencyRepository interface {
	Find(ctx context.Context, key string) (*entity.IdempotencyRecord, error)
	Save(ctx context.Context, record *entity.IdempotencyRecord) error
	Lock(ctx context.Context, key string) error
}
