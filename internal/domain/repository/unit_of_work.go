package repository

//go:generate mockgen -source=unit_of_work.go -destination=../../usecase/mocks/unit_of_work_mock.go -package=mocks

import "context"

type UnitOfWork interface {
	Begin(ctx context.Context) (UnitOfWork, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	Payments() PaymentRepository
	Refunds() RefundRepository
	Idempotency() IdempotencyRepository
}
