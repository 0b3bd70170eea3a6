package postgres

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Xausdorf/swish-pay-hub/internal/domain/entity"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type UnitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &UnitOfWork{pool: u.pool, tx: tx}, nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(ctx)
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback(ctx)
}

func (u *UnitOfWork) Payments() repository.PaymentRepository {
	return &PaymentRepo{q: u.querier()}
}

func (u *UnitOfWork) Refunds() repository.RefundRepository {
	return &RefundRepo{q: u.querier()}
}

func (u *UnitOfWork) Idempotency() repository.IdempotencyRepository {
	return &IdempotencyRepo{q: u.querier(), tx: u.tx}
}

func (u *UnitOfWork) querier() querier {
	if u.tx != nil {
		return u.tx
	}
	return u.pool
}

type PaymentRepo struct {
	q querier
}

const paymentColumns = `id, swish_id, location, request_token, payee_payment_reference, payer_alias,
	amount::text, message, status, payment_reference, date_paid, error_code, error_message,
	created_at, updated_at`

func (r *PaymentRepo) Create(ctx context.Context, p *entity.PaymentRequest) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO payment_requests (id, swish_id, location, request_token, payee_payment_reference,
			payer_alias, amount, message, status, payment_reference, date_paid, error_code, error_message,
			created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID(), p.SwishID(), p.Location(), p.RequestToken(), p.PayeePaymentReference(),
		p.PayerAlias(), p.Amount().String(), p.Message(), string(p.Status()), p.PaymentReference(),
		p.DatePaid(), p.ErrorCode(), p.ErrorMessage(), p.CreatedAt(), p.UpdatedAt(),
	)
	return err
}

func (r *PaymentRepo) Update(ctx context.Context, p *entity.PaymentRequest) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE payment_requests
		 SET status = $2, payment_reference = $3, date_paid = $4, error_code = $5, error_message = $6,
			updated_at = $7
		 WHERE id = $1`,
		p.ID(), string(p.Status()), p.PaymentReference(), p.DatePaid(), p.ErrorCode(), p.ErrorMessage(),
		p.UpdatedAt(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentRequest, error) {
	return scanPayment(r.q.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payment_requests WHERE id = $1`, id))
}

func (r *PaymentRepo) FindBySwishID(ctx context.Context, swishID string) (*entity.PaymentRequest, error) {
	return scanPayment(r.q.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payment_requests WHERE swish_id = $1`, swishID))
}

func scanPayment(row pgx.Row) (*entity.PaymentRequest, error) {
	var (
		s      entity.PaymentRequestSnapshot
		amount string
		status string
	)
	err := row.Scan(&s.ID, &s.SwishID, &s.Location, &s.RequestToken, &s.PayeePaymentReference,
		&s.PayerAlias, &amount, &s.Message, &status, &s.PaymentReference, &s.DatePaid,
		&s.ErrorCode, &s.ErrorMessage, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	s.Status = entity.Status(status)
	return entity.ReconstructPaymentRequest(s), nil
}

type RefundRepo struct {
	q querier
}

const refundColumns = `id, payment_id, swish_id, location, original_payment_reference,
	payer_payment_reference, amount::text, message, status, date_paid, error_code, error_message,
	created_at, updated_at`

func (r *RefundRepo) Create(ctx context.Context, rf *entity.Refund) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO refunds (id, payment_id, swish_id, location, original_payment_reference,
			payer_payment_reference, amount, message, status, date_paid, error_code, error_message,
			created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10, $11, $12, $13, $14)`,
		rf.ID(), rf.PaymentID(), rf.SwishID(), rf.Location(), rf.OriginalPaymentReference(),
		rf.PayerPaymentReference(), rf.Amount().String(), rf.Message(), string(rf.Status()),
		rf.DatePaid(), rf.ErrorCode(), rf.ErrorMessage(), rf.CreatedAt(), rf.UpdatedAt(),
	)
	return err
}

func (r *RefundRepo) Update(ctx context.Context, rf *entity.Refund) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE refunds
		 SET status = $2, date_paid = $3, error_code = $4, error_message = $5, updated_at = $6
		 WHERE id = $1`,
		rf.ID(), string(rf.Status()), rf.DatePaid(), rf.ErrorCode(), rf.ErrorMessage(), rf.UpdatedAt(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *RefundRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Refund, error) {
	return scanRefund(r.q.QueryRow(ctx,
		`SELECT `+refundColumns+` FROM refunds WHERE id = $1`, id))
}

func (r *RefundRepo) FindBySwishID(ctx context.Context, swishID string) (*entity.Refund, error) {
	return scanRefund(r.q.QueryRow(ctx,
		`SELECT `+refundColumns+` FROM refunds WHERE swish_id = $1`, swishID))
}

func (r *RefundRepo) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*entity.Refund, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+refundColumns+` FROM refunds WHERE payment_id = $1 ORDER BY created_at`, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refunds []*entity.Refund
	for rows.Next() {
		rf, err := scanRefund(rows)
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, rf)
	}
	return refunds, rows.Err()
}

func scanRefund(row pgx.Row) (*entity.Refund, error) {
	var (
		s      entity.RefundSnapshot
		amount string
		status string
	)
	err := row.Scan(&s.ID, &s.PaymentID, &s.SwishID, &s.Location, &s.OriginalPaymentReference,
		&s.PayerPaymentReference, &amount, &s.Message, &status, &s.DatePaid,
		&s.ErrorCode, &s.ErrorMessage, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	s.Status = entity.Status(status)
	return entity.ReconstructRefund(s), nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse stored amount %q: %w", s, err)
	}
	return d, nil
}

type IdempotencyRepo struct {
	q  querier
	tx pgx.Tx
}

// Find returns nil without an error when the key is unknown.
func (r *IdempotencyRepo) Find(ctx context.Context, key string) (*entity.IdempotencyRecord, error) {
	var (
		fingerprint string
		paymentID   *uuid.UUID
		code        int
		body        []byte
		createdAt   time.Time
	)
	err := r.q.QueryRow(ctx,
		`SELECT fingerprint, payment_id, response_code, response_body, created_at
		 FROM idempotency_keys WHERE key = $1`,
		key,
	).Scan(&fingerprint, &paymentID, &code, &body, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	id := uuid.Nil
	if paymentID != nil {
		id = *paymentID
	}
	return entity.ReconstructIdempotencyRecord(key, fingerprint, id, code, body, createdAt), nil
}

func (r *IdempotencyRepo) Save(ctx context.Context, record *entity.IdempotencyRecord) error {
	var paymentID *uuid.UUID
	if id := record.PaymentID(); id != uuid.Nil {
		paymentID = &id
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO idempotency_keys (key, fingerprint, payment_id, response_code, response_body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (key) DO NOTHING`,
		record.Key(), record.Fingerprint(), paymentID, record.ResponseCode(), record.ResponseBody(),
		record.CreatedAt(),
	)
	return err
}

// Lock takes a transaction scoped advisory lock on the key.
func (r *IdempotencyRepo) Lock(ctx context.Context, key string) error {
	if r.tx == nil {
		return errors.New("idempotency lock requires a transaction")
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	_, err := r.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(h.Sum64()))
	return err
}
