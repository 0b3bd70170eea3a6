package swishclient

import (
	"context"
	"errors"

	"github.com/Xausdorf/swish-pay-hub/internal/domain/entity"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/payment"
	"github.com/Xausdorf/swish-pay-hub/swish"
)

// Client adapts the swish library to the payment port.
type Client struct {
	api                *swish.Client
	paymentCallbackURL string
	refundCallbackURL  string
}

func NewClient(api *swish.Client, paymentCallbackURL, refundCallbackURL string) *Client {
	return &Client{
		api:                api,
		paymentCallbackURL: paymentCallbackURL,
		refundCallbackURL:  refundCallbackURL,
	}
}

func (c *Client) CreatePayment(ctx context.Context, req payment.CreatePaymentRequest) (*payment.CreatedPayment, error) {
	created, err := c.api.CreatePayment(ctx, swish.PaymentParams{
		PayeePaymentReference: req.PayeePaymentReference,
		CallbackURL:           c.paymentCallbackURL,
		PayerAlias:            req.PayerAlias,
		Amount:                req.Amount,
		Currency:              swish.SEK,
		Message:               req.Message,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &payment.CreatedPayment{
		SwishID:      created.ID,
		Location:     created.Location,
		RequestToken: created.RequestToken,
	}, nil
}

func (c *Client) GetPayment(ctx context.Context, swishID string) (*entity.StatusUpdate, error) {
	p, err := c.api.GetPayment(ctx, swishID)
	if err != nil {
		return nil, mapError(err)
	}
	update := PaymentUpdate(p)
	return &update, nil
}

func (c *Client) CreateRefund(ctx context.Context, req payment.CreateRefundRequest) (*payment.CreatedRefund, error) {
	created, err := c.api.CreateRefund(ctx, swish.RefundParams{
		PayerPaymentReference:    req.PayerPaymentReference,
		OriginalPaymentReference: req.OriginalPaymentReference,
		CallbackURL:              c.refundCallbackURL,
		Amount:                   req.Amount,
		Currency:                 swish.SEK,
		Message:                  req.Message,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return &payment.CreatedRefund{
		SwishID:  created.ID,
		Location: created.Location,
	}, nil
}

func (c *Client) GetRefund(ctx context.Context, swishID string) (*entity.StatusUpdate, error) {
	r, err := c.api.GetRefund(ctx, swishID)
	if err != nil {
		return nil, mapError(err)
	}
	update := RefundUpdate(r)
	return &update, nil
}

// PaymentUpdate converts a payment object from Swish, fetched or posted to the
// callback URL, into a status update.
func PaymentUpdate(p *swish.Payment) entity.StatusUpdate {
	return entity.StatusUpdate{
		Status:           entity.Status(p.Status),
		PaymentReference: p.PaymentReference,
		DatePaid:         p.DatePaid,
		ErrorCode:        string(p.ErrorCode),
		ErrorMessage:     p.ErrorMessage,
	}
}

func RefundUpdate(r *swish.Refund) entity.StatusUpdate {
	return entity.StatusUpdate{
		Status:       entity.Status(r.Status),
		DatePaid:     r.DatePaid,
		ErrorCode:    string(r.ErrorCode),
		ErrorMessage: r.ErrorMessage,
	}
}

// mapError turns a rejected request into payment.RejectedError. The first
// error in the list is reported; every other error is returned unchanged.
func mapError(err error) error {
	var reqErr *swish.RequestError
	if !errors.As(err, &reqErr) {
		return err
	}
	rejected := &payment.RejectedError{
		StatusCode: reqErr.StatusCode,
		Message:    reqErr.Body,
	}
	if len(reqErr.Errors) > 0 {
		rejected.Code = string(reqErr.Errors[0].Code)
		rejected.Message = reqErr.Errors[0].Message
	}
	return rejected
}
