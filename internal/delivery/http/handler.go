package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Xausdorf/swish-pay-hub/internal/domain/entity"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/payment"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/repository"
	"github.com/Xausdorf/swish-pay-hub/internal/infrastructure/swishclient"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/callback"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/createpayment"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/createrefund"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/generateqr"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/getpayment"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/getrefund"
	"github.com/Xausdorf/swish-pay-hub/swish"
)

const maxBodySize = 64 << 10

type UseCases struct {
	CreatePayment *createpayment.UseCase
	GetPayment    *getpayment.UseCase
	CreateRefund  *createrefund.UseCase
	GetRefund     *getrefund.UseCase
	Callback      *callback.UseCase
	GenerateQR    *generateqr.UseCase
}

type Handler struct {
	uc     UseCases
	logger *slog.Logger
}

func NewHandler(uc UseCases, logger *slog.Logger) *Handler {
	return &Handler{uc: uc, logger: logger}
}

type CreatePaymentRequest struct {
	PayeePaymentReference string          `json:"payee_payment_reference"`
	PayerAlias            string          `json:"payer_alias"`
	Amount                decimal.Decimal `json:"amount"`
	Message               string          `json:"message"`
}

type CreatePaymentResponse struct {
	PaymentID    string `json:"payment_id,omitempty"`
	SwishID      string `json:"swish_id,omitempty"`
	RequestToken string `json:"request_token,omitempty"`
	Status       string `json:"status"`
	ErrorCode    string `json:"error_code,omitempty"`
	Error        string `json:"error,omitempty"`
}

type PaymentResponse struct {
	ID                    string     `json:"id"`
	SwishID               string     `json:"swish_id"`
	PayeePaymentReference string     `json:"payee_payment_reference,omitempty"`
	PayerAlias            string     `json:"payer_alias,omitempty"`
	Amount                string     `json:"amount"`
	Message               string     `json:"message,omitempty"`
	Status                string     `json:"status"`
	PaymentReference      string     `json:"payment_reference,omitempty"`
	RequestToken          string     `json:"request_token,omitempty"`
	DatePaid              *time.Time `json:"date_paid,omitempty"`
	ErrorCode             string     `json:"error_code,omitempty"`
	ErrorMessage          string     `json:"error_message,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

type CreateRefundRequest struct {
	PayerPaymentReference string          `json:"payer_payment_reference"`
	Amount                decimal.Decimal `json:"amount"`
	Message               string          `json:"message"`
}

type RefundResponse struct {
	ID                       string     `json:"id"`
	PaymentID                string     `json:"payment_id"`
	SwishID                  string     `json:"swish_id"`
	OriginalPaymentReference string     `json:"original_payment_reference"`
	PayerPaymentReference    string     `json:"payer_payment_reference,omitempty"`
	Amount                   string     `json:"amount"`
	Message                  string     `json:"message,omitempty"`
	Status                   string     `json:"status"`
	DatePaid                 *time.Time `json:"date_paid,omitempty"`
	ErrorCode                string     `json:"error_code,omitempty"`
	ErrorMessage             string     `json:"error_message,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
}

func (h *Handler) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	idempotencyKey := r.Header.Get("X-Idempotency-Key")
	if idempotencyKey == "" {
		writeJSONError(w, http.StatusBadRequest, "X-Idempotency-Key header required")
		return
	}

	var req CreatePaymentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	resp, err := h.uc.CreatePayment.Execute(r.Context(), createpayment.Request{
		IdempotencyKey:        idempotencyKey,
		PayeePaymentReference: req.PayeePaymentReference,
		PayerAlias:            req.PayerAlias,
		Amount:                req.Amount,
		Message:               req.Message,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if resp.Replayed {
		w.Header().Set("Idempotent-Replayed", "true")
	}
	code := http.StatusCreated
	if resp.Status == entity.StatusError {
		code = http.StatusUnprocessableEntity
	}
	out := CreatePaymentResponse{
		SwishID:      resp.SwishID,
		RequestToken: resp.RequestToken,
		Status:       string(resp.Status),
		ErrorCode:    resp.ErrorCode,
		Error:        resp.ErrorMessage,
	}
	if resp.PaymentID != uuid.Nil {
		out.PaymentID = resp.PaymentID.String()
	}
	writeJSON(w, code, out)
}

func (h *Handler) HandleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.uc.GetPayment.Execute(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

func (h *Handler) HandleQR(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	png, err := h.uc.GenerateQR.Execute(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = w.Write(png)
}

func (h *Handler) HandleCreateRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req CreateRefundRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	refund, err := h.uc.CreateRefund.Execute(r.Context(), createrefund.Request{
		PaymentID:             id,
		PayerPaymentReference: req.PayerPaymentReference,
		Amount:                req.Amount,
		Message:               req.Message,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRefundResponse(refund))
}

func (h *Handler) HandleGetRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	refund, err := h.uc.GetRefund.Execute(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRefundResponse(refund))
}

func (h *Handler) HandlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	p, err := swish.ParsePaymentCallback(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := h.uc.Callback.ExecutePayment(r.Context(), callback.Request{
		SwishID: p.ID,
		Update:  swishclient.PaymentUpdate(p),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "payment callback applied",
		"payment_id", stored.ID(), "swish_id", p.ID, "status", stored.Status())
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) HandleRefundCallback(w http.ResponseWriter, r *http.Request) {
	rf, err := swish.ParseRefundCallback(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := h.uc.Callback.ExecuteRefund(r.Context(), callback.Request{
		SwishID: rf.ID,
		Update:  swishclient.RefundUpdate(rf),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "refund callback applied",
		"refund_id", stored.ID(), "swish_id", rf.ID, "status", stored.Status())
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		rejected  *payment.RejectedError
		transport *swish.TransportError
	)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, entity.ErrNonPositiveAmount),
		errors.Is(err, entity.ErrAmountPrecision),
		errors.Is(err, createrefund.ErrAmountExceedsPayment),
		errors.Is(err, swish.ErrInvalidParams):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrNotPaid),
		errors.Is(err, entity.ErrNoRequestToken),
		errors.Is(err, entity.ErrIdempotencyKeyReused):
		writeJSONError(w, http.StatusConflict, err.Error())
	case errors.As(err, &rejected) && rejected.Permanent():
		writeJSON(w, http.StatusUnprocessableEntity, CreatePaymentResponse{
			Status:    string(entity.StatusError),
			ErrorCode: rejected.Code,
			Error:     rejected.Message,
		})
	case errors.As(err, &rejected), errors.As(err, &transport):
		h.logger.ErrorContext(r.Context(), "swish unavailable", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusBadGateway, "swish unavailable")
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(out)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func toPaymentResponse(p *entity.PaymentRequest) PaymentResponse {
	return PaymentResponse{
		ID:                    p.ID().String(),
		SwishID:               p.SwishID(),
		PayeePaymentReference: p.PayeePaymentReference(),
		PayerAlias:            p.PayerAlias(),
		Amount:                p.Amount().StringFixed(2),
		Message:               p.Message(),
		Status:                string(p.Status()),
		PaymentReference:      p.PaymentReference(),
		RequestToken:          p.RequestToken(),
		DatePaid:              p.DatePaid(),
		ErrorCode:             p.ErrorCode(),
		ErrorMessage:          p.ErrorMessage(),
		CreatedAt:             p.CreatedAt(),
	}
}

func toRefundResponse(r *entity.Refund) RefundResponse {
	return RefundResponse{
		ID:                       r.ID().String(),
		PaymentID:                r.PaymentID().String(),
		SwishID:                  r.SwishID(),
		OriginalPaymentReference: r.OriginalPaymentReference(),
		PayerPaymentReference:    r.PayerPaymentReference(),
		Amount:                   r.Amount().StringFixed(2),
		Message:                  r.Message(),
		Status:                   string(r.Status()),
		DatePaid:                 r.DatePaid(),
		ErrorCode:                r.ErrorCode(),
		ErrorMessage:             r.ErrorMessage(),
		CreatedAt:                r.CreatedAt(),
	}
}
