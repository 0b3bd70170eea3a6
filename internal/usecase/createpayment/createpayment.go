package createpayment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Xausdorf/swish-pay-hub/internal/domain/entity"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/payment"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/repository"
)

type Request struct {
	IdempotencyKey        string
	PayeePaymentReference string
	PayerAlias            string
	Amount                decimal.Decimal
	Message               string
}

type Response struct {
	PaymentID    uuid.UUID
	SwishID      string
	RequestToken string
	Status       entity.Status
	ErrorCode    string
	ErrorMessage string
	Replayed     bool
}

type responseCache struct {
	PaymentID    string `json:"payment_id"`
	SwishID      string `json:"swish_id"`
	RequestToken string `json:"request_token"`
	Status       string `json:"status"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type UseCase struct {
	uow    repository.UnitOfWork
	client payment.Client
}

func NewUseCase(uow repository.UnitOfWork, client payment.Client) *UseCase {
	return &UseCase{uow: uow, client: client}
}

func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	if err := entity.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	fingerprint := requestFingerprint(req)

	cached, err := uc.uow.Idempotency().Find(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return uc.replay(cached, fingerprint)
	}

	tx, err := uc.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.Idempotency().Lock(ctx, req.IdempotencyKey); err != nil {
		return nil, err
	}

	cached, err = tx.Idempotency().Find(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return uc.replay(cached, fingerprint)
	}

	created, err := uc.client.CreatePayment(ctx, payment.CreatePaymentRequest{
		PayeePaymentReference: req.PayeePaymentReference,
		PayerAlias:            req.PayerAlias,
		Amount:                req.Amount,
		Message:               req.Message,
	})
	var rejected *payment.RejectedError
	if errors.As(err, &rejected) && rejected.Permanent() {
		return uc.saveAndReturn(ctx, tx, req.IdempotencyKey, fingerprint, &Response{
			Status:       entity.StatusError,
			ErrorCode:    rejected.Code,
			ErrorMessage: rejected.Message,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("create swish payment: %w", err)
	}

	p := entity.NewPaymentRequest(created.SwishID, created.Location, created.RequestToken, entity.PaymentDetails{
		PayeePaymentReference: req.PayeePaymentReference,
		PayerAlias:            req.PayerAlias,
		Amount:                req.Amount,
		Message:               req.Message,
	})
	if err := tx.Payments().Create(ctx, p); err != nil {
		return nil, err
	}

	return uc.saveAndReturn(ctx, tx, req.IdempotencyKey, fingerprint, &Response{
		PaymentID:    p.ID(),
		SwishID:      p.SwishID(),
		RequestToken: p.RequestToken(),
		Status:       p.Status(),
	})
}

func (uc *UseCase) saveAndReturn(
	ctx context.Context,
	tx repository.UnitOfWork,
	key, fingerprint string,
	resp *Response,
) (*Response, error) {
	body, err := json.Marshal(responseCache{
		PaymentID:    resp.PaymentID.String(),
		SwishID:      resp.SwishID,
		RequestToken: resp.RequestToken,
		Status:       string(resp.Status),
		ErrorCode:    resp.ErrorCode,
		ErrorMessage: resp.ErrorMessage,
	})
	if err != nil {
		return nil, err
	}

	record := entity.NewIdempotencyRecord(key, fingerprint, resp.PaymentID, statusToCode(resp.Status), body)
	if err := tx.Idempotency().Save(ctx, record); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return resp, nil
}

func (uc *UseCase) replay(record *entity.IdempotencyRecord, fingerprint string) (*Response, error) {
	if err := record.Check(fingerprint); err != nil {
		return nil, err
	}

	var cache responseCache
	if err := json.Unmarshal(record.ResponseBody(), &cache); err != nil {
		return nil, err
	}
	paymentID, err := uuid.Parse(cache.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("cached payment id: %w", err)
	}
	return &Response{
		PaymentID:    paymentID,
		SwishID:      cache.SwishID,
		RequestToken: cache.RequestToken,
		Status:       entity.Status(cache.Status),
		ErrorCode:    cache.ErrorCode,
		ErrorMessage: cache.ErrorMessage,
		Replayed:     true,
	}, nil
}

func requestFingerprint(req Request) string {
	sum := sha256.Sum256([]byte(req.PayeePaymentReference + "\x00" +
		req.PayerAlias + "\x00" +
		req.Amount.StringFixed(2) + "\x00" +
		req.Message))
	return hex.EncodeToString(sum[:])
}

const (
	statusCodeUnspecified = 0
	statusCodeCreated     = 1
	statusCodeRejected    = 2
)

func statusToCode(s entity.Status) int {
	switch s {
	case entity.StatusCreated:
		return statusCodeCreated
	case entity.StatusError:
		return statusCodeRejected
	default:
		return statusCodeUnspecified
	}
}
