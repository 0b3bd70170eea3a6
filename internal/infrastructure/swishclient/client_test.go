package swishclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xausdorf/swish-pay-hub/internal/domain/entity"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/payment"
	"github.com/Xausdorf/swish-pay-hub/internal/infrastructure/swishclient"
	"github.com/Xausdorf/swish-pay-hub/swish"
)

const (
	merchantAlias      = "1231181189"
	paymentCallbackURL = "https://shop.example.com/api/swish/callbacks/payments"
	refundCallbackURL  = "https://shop.example.com/api/swish/callbacks/refunds"
)

func newClient(t *testing.T, handler http.HandlerFunc) *swishclient.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api, err := swish.New(
		swish.Config{MerchantAlias: merchantAlias, BaseURL: srv.URL},
		swish.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return swishclient.NewClient(api, paymentCallbackURL, refundCallbackURL)
}

func TestClient_CreatePayment(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/paymentrequests", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, paymentCallbackURL, body["callbackUrl"])
		assert.Equal(t, merchantAlias, body["payeeAlias"])
		assert.Equal(t, "100.00", body["amount"])

		w.Header().Set("Location", "https://swish.test/paymentrequests/AB23D7406ECE4542A80152D909EF9F6B")
		w.Header().Set("PaymentRequestToken", "c28a4061470f4af48973bd2a4642b4fa")
		w.WriteHeader(http.StatusCreated)
	})

	created, err := client.CreatePayment(context.Background(), payment.CreatePaymentRequest{
		PayeePaymentReference: "0123456789",
		Amount:                decimal.NewFromInt(100),
	})

	require.NoError(t, err)
	assert.Equal(t, "AB23D7406ECE4542A80152D909EF9F6B", created.SwishID)
	assert.Equal(t, "c28a4061470f4af48973bd2a4642b4fa", created.RequestToken)
}

func TestClient_CreatePayment_Rejected(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`[{"errorCode":"RP06","errorMessage":"A payment request already exists for that payer"}]`))
	})

	_, err := client.CreatePayment(context.Background(), payment.CreatePaymentRequest{Amount: decimal.NewFromInt(1)})

	var rejected *payment.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusUnprocessableEntity, rejected.StatusCode)
	assert.Equal(t, "RP06", rejected.Code)
	assert.Equal(t, "A payment request already exists for that payer", rejected.Message)
	assert.True(t, rejected.Permanent())
}

func TestClient_CreatePayment_RejectedWithoutErrorList(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := client.CreatePayment(context.Background(), payment.CreatePaymentRequest{Amount: decimal.NewFromInt(1)})

	var rejected *payment.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Empty(t, rejected.Code)
	assert.Equal(t, "unauthorized", rejected.Message)
}

func TestClient_GetPayment(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/paymentrequests/AB23", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": "AB23",
			"paymentReference": "6D6CD7406ECE4542A80152D909EF9F6B",
			"amount": 100,
			"currency": "SEK",
			"status": "PAID",
			"dateCreated": "2019-01-02T14:29:51.092Z",
			"datePaid": "2019-01-02T14:29:55.093Z"
		}`))
	})

	update, err := client.GetPayment(context.Background(), "AB23")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaid, update.Status)
	assert.Equal(t, "6D6CD7406ECE4542A80152D909EF9F6B", update.PaymentReference)
	require.NotNil(t, update.DatePaid)
}

func TestClient_CreateAndGetRefund(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, refundCallbackURL, body["callbackUrl"])
			assert.Equal(t, merchantAlias, body["payerAlias"])
			assert.Equal(t, "6D6CD7406ECE4542A80152D909EF9F6B", body["originalPaymentReference"])
			w.Header().Set("Location", "https://swish.test/refunds/ABC2")
			w.WriteHeader(http.StatusCreated)
		default:
			_, _ = w.Write([]byte(`{"id":"ABC2","amount":10,"currency":"SEK","status":"DEBITED","dateCreated":"2019-01-03T10:00:00Z"}`))
		}
	})

	created, err := client.CreateRefund(context.Background(), payment.CreateRefundRequest{
		OriginalPaymentReference: "6D6CD7406ECE4542A80152D909EF9F6B",
		Amount:                   decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC2", created.SwishID)

	update, err := client.GetRefund(context.Background(), "ABC2")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDebited, update.Status)
}

func TestClient_TransportErrorPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	api, err := swish.New(swish.Config{MerchantAlias: merchantAlias, BaseURL: srv.URL}, swish.WithHTTPClient(http.DefaultClient))
	require.NoError(t, err)

	_, err = swishclient.NewClient(api, paymentCallbackURL, refundCallbackURL).GetPayment(context.Background(), "AB23")

	var transportErr *swish.TransportError
	require.ErrorAs(t, err, &transportErr)
	var rejected *payment.RejectedError
	assert.False(t, errors.As(err, &rejected))
}
