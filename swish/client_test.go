package swish_test

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xausdorf/swish-pay-hub/swish"
)

const (
	stubBaseURL = "https://swish.test/swish-cpcapi/api/v1"
	paymentID   = "AB23D7406ECE4542A80152D909EF9F6B"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newStubClient(t *testing.T, fn roundTripFunc) *swish.Client {
	t.Helper()
	client, err := swish.New(
		swish.Config{MerchantAlias: testMerchantAlias, BaseURL: stubBaseURL},
		swish.WithHTTPClient(&http.Client{Transport: fn}),
	)
	require.NoError(t, err)
	return client
}

func respond(status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func defaultPaymentParams() swish.PaymentParams {
	return swish.PaymentParams{
		Amount:                decimal.RequireFromString("100.00"),
		PayeePaymentReference: "0123456789",
		CallbackURL:           "https://example.com/api/swishcb/paymentrequests",
		Message:               "Kingston USB Flash Drive 8 GB",
	}
}

func newMutualTLSServer(t *testing.T, pki *testPKI, handler http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewUnstartedServer(handler)
	srv.TLS = &tls.Config{
		Certificates: []tls.Certificate{pki.serverCert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    pki.caPool,
	}
	srv.StartTLS()
	t.Cleanup(srv.Close)
	return srv
}

func paymentRequestsHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if assert.NotEmpty(t, r.TLS.PeerCertificates) {
			assert.Equal(t, clientCommonName, r.TLS.PeerCertificates[0].Subject.CommonName)
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/swish-cpcapi/api/v1/paymentrequests", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, testMerchantAlias, body["payeeAlias"])
		assert.Equal(t, "100.00", body["amount"])

		w.Header().Set("Location", "https://"+r.Host+"/swish-cpcapi/api/v1/paymentrequests/"+paymentID)
		w.Header().Set("PaymentRequestToken", "c28a4061470f4af48973bd2a4642b4fa")
		w.WriteHeader(http.StatusCreated)
	})
}

func TestNew_RequiresMerchantAlias(t *testing.T) {
	_, err := swish.New(swish.Config{}, swish.WithHTTPClient(http.DefaultClient))

	require.ErrorIs(t, err, swish.ErrInvalidParams)
}

func TestNew_TLSSetupFailures(t *testing.T) {
	pki := newTestPKI(t)
	garbage := filepath.Join(t.TempDir(), "garbage")
	require.NoError(t, os.WriteFile(garbage, []byte("not a certificate"), 0o600))

	tests := []struct {
		name string
		cfg  swish.Config
	}{
		{
			name: "missing certificate path",
			cfg:  swish.Config{},
		},
		{
			name: "unreadable certificate",
			cfg:  swish.Config{CertPath: filepath.Join(t.TempDir(), "missing.p12"), Passphrase: testPassphrase},
		},
		{
			name: "invalid pkcs12 data",
			cfg:  swish.Config{CertPath: garbage, Passphrase: testPassphrase},
		},
		{
			name: "wrong passphrase",
			cfg:  swish.Config{CertPath: pki.clientP12Path, Passphrase: "wrong"},
		},
		{
			name: "pem certificate with mismatched key",
			cfg:  swish.Config{CertPath: pki.clientCertPath, KeyPath: garbage},
		},
		{
			name: "invalid root certificate",
			cfg:  swish.Config{CertPath: pki.clientP12Path, Passphrase: testPassphrase, RootCertPath: garbage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.MerchantAlias = testMerchantAlias

			_, err := swish.New(tt.cfg)

			var tlsErr *swish.TLSError
			require.ErrorAs(t, err, &tlsErr)
		})
	}
}

func TestCreatePayment_MutualTLS(t *testing.T) {
	pki := newTestPKI(t)
	srv := newMutualTLSServer(t, pki, paymentRequestsHandler(t))

	tests := []struct {
		name string
		cfg  swish.Config
	}{
		{
			name: "pkcs12 identity with pem root",
			cfg:  swish.Config{CertPath: pki.clientP12Path, Passphrase: testPassphrase, RootCertPath: pki.caPEMPath},
		},
		{
			name: "pkcs12 identity with der root",
			cfg:  swish.Config{CertPath: pki.clientP12Path, Passphrase: testPassphrase, RootCertPath: pki.caDERPath},
		},
		{
			name: "pem identity",
			cfg:  swish.Config{CertPath: pki.clientCertPath, KeyPath: pki.clientKeyPath, RootCertPath: pki.caPEMPath},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.MerchantAlias = testMerchantAlias
			tt.cfg.BaseURL = srv.URL + "/swish-cpcapi/api/v1/"

			client, err := swish.New(tt.cfg)
			require.NoError(t, err)

			created, err := client.CreatePayment(context.Background(), defaultPaymentParams())

			require.NoError(t, err)
			assert.Equal(t, paymentID, created.ID)
			assert.True(t, strings.HasSuffix(created.Location, "/paymentrequests/"+paymentID))
			assert.Equal(t, "c28a4061470f4af48973bd2a4642b4fa", created.RequestToken)
		})
	}
}

func TestCreatePayment_ServerRequiresClientCertificate(t *testing.T) {
	pki := newTestPKI(t)
	srv := newMutualTLSServer(t, pki, paymentRequestsHandler(t))

	noIdentity := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: pki.caPool, MinVersion: tls.VersionTLS12},
	}}
	client, err := swish.New(
		swish.Config{MerchantAlias: testMerchantAlias, BaseURL: srv.URL},
		swish.WithHTTPClient(noIdentity),
	)
	require.NoError(t, err)

	_, err = client.CreatePayment(context.Background(), defaultPaymentParams())

	var transportErr *swish.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.MethodPost, transportErr.Method)
}

func TestCreatePayment_UntrustedServer(t *testing.T) {
	pki := newTestPKI(t)
	other := newTestPKI(t)
	srv := newMutualTLSServer(t, pki, paymentRequestsHandler(t))

	client, err := swish.New(swish.Config{
		MerchantAlias: testMerchantAlias,
		CertPath:      pki.clientP12Path,
		Passphrase:    testPassphrase,
		RootCertPath:  other.caPEMPath,
		BaseURL:       srv.URL,
	})
	require.NoError(t, err)

	_, err = client.CreatePayment(context.Background(), defaultPaymentParams())

	var transportErr *swish.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestCreatePayment_Responses(t *testing.T) {
	errBoom := errors.New("connection reset by peer")

	tests := []struct {
		name   string
		rt     roundTripFunc
		assert func(t *testing.T, created *swish.CreatedPayment, err error)
	}{
		{
			name: "e-commerce payment without token",
			rt: func(r *http.Request) (*http.Response, error) {
				h := http.Header{}
				h.Set("Location", stubBaseURL+"/paymentrequests/"+paymentID)
				return respond(http.StatusCreated, "", h), nil
			},
			assert: func(t *testing.T, created *swish.CreatedPayment, err error) {
				require.NoError(t, err)
				assert.Equal(t, paymentID, created.ID)
				assert.Empty(t, created.RequestToken)
			},
		},
		{
			name: "transport failure",
			rt: func(r *http.Request) (*http.Response, error) {
				return nil, errBoom
			},
			assert: func(t *testing.T, _ *swish.CreatedPayment, err error) {
				var transportErr *swish.TransportError
				require.ErrorAs(t, err, &transportErr)
				assert.ErrorIs(t, err, errBoom)
				assert.Equal(t, stubBaseURL+"/paymentrequests", transportErr.URL)
			},
		},
		{
			name: "validation errors list",
			rt: func(r *http.Request) (*http.Response, error) {
				return respond(http.StatusUnprocessableEntity,
					`[{"errorCode":"RP03","errorMessage":"Callback URL is missing or does not use HTTPS","additionalInformation":null},`+
						`{"errorCode":"AM06","errorMessage":"Specified transaction amount is less than agreed minimum"}]`, nil), nil
			},
			assert: func(t *testing.T, _ *swish.CreatedPayment, err error) {
				var reqErr *swish.RequestError
				require.ErrorAs(t, err, &reqErr)
				assert.Equal(t, http.StatusUnprocessableEntity, reqErr.StatusCode)
				require.Len(t, reqErr.Errors, 2)
				assert.True(t, reqErr.HasCode(swish.ErrorCodeInvalidCallbackURL))
				assert.True(t, reqErr.HasCode(swish.ErrorCodeAmountTooLow))
				assert.False(t, reqErr.HasCode(swish.ErrorCodeOriginalNotFound))
			},
		},
		{
			name: "single error object",
			rt: func(r *http.Request) (*http.Response, error) {
				return respond(http.StatusForbidden, `{"errorCode":"PA01","errorMessage":"Parameter is not correct."}`, nil), nil
			},
			assert: func(t *testing.T, _ *swish.CreatedPayment, err error) {
				var reqErr *swish.RequestError
				require.ErrorAs(t, err, &reqErr)
				require.Len(t, reqErr.Errors, 1)
				assert.Equal(t, swish.ErrorCodeInvalidParameter, reqErr.Errors[0].Code)
			},
		},
		{
			name: "plain text error",
			rt: func(r *http.Request) (*http.Response, error) {
				return respond(http.StatusInternalServerError, "internal error\n", nil), nil
			},
			assert: func(t *testing.T, _ *swish.CreatedPayment, err error) {
				var reqErr *swish.RequestError
				require.ErrorAs(t, err, &reqErr)
				assert.Empty(t, reqErr.Errors)
				assert.Equal(t, "internal error", reqErr.Body)
				assert.Contains(t, err.Error(), "500")
			},
		},
		{
			name: "missing location header",
			rt: func(r *http.Request) (*http.Response, error) {
				return respond(http.StatusCreated, "", nil), nil
			},
			assert: func(t *testing.T, _ *swish.CreatedPayment, err error) {
				var decodeErr *swish.DecodeError
				require.ErrorAs(t, err, &decodeErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newStubClient(t, tt.rt)

			created, err := client.CreatePayment(context.Background(), defaultPaymentParams())

			tt.assert(t, created, err)
		})
	}
}

func TestCreatePayment_InvalidParamsSendNothing(t *testing.T) {
	var calls atomic.Int32
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		return respond(http.StatusCreated, "", nil), nil
	})

	tests := []struct {
		name   string
		mutate func(p *swish.PaymentParams)
		field  string
	}{
		{name: "zero amount", mutate: func(p *swish.PaymentParams) { p.Amount = decimal.Zero }, field: "amount"},
		{name: "negative amount", mutate: func(p *swish.PaymentParams) { p.Amount = decimal.NewFromInt(-5) }, field: "amount"},
		{name: "missing callback", mutate: func(p *swish.PaymentParams) { p.CallbackURL = "" }, field: "callbackUrl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := defaultPaymentParams()
			tt.mutate(&params)

			_, err := client.CreatePayment(context.Background(), params)

			require.ErrorIs(t, err, swish.ErrInvalidParams)
			var validationErr *swish.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}

	assert.Zero(t, calls.Load())
}

func TestCreatePayment_CancelledContext(t *testing.T) {
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		if err := r.Context().Err(); err != nil {
			return nil, err
		}
		return respond(http.StatusCreated, "", nil), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreatePayment(ctx, defaultPaymentParams())

	var transportErr *swish.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetPayment(t *testing.T) {
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/swish-cpcapi/api/v1/paymentrequests/"+paymentID, r.URL.Path)
		return respond(http.StatusOK, `{
			"id": "AB23D7406ECE4542A80152D909EF9F6B",
			"payeePaymentReference": "0123456789",
			"paymentReference": "1E2FC19E5E5E4E18916609B7F8911C12",
			"callbackUrl": "https://example.com/api/swishcb/paymentrequests",
			"payerAlias": "46712345678",
			"payeeAlias": "1231181189",
			"amount": 100.00,
			"currency": "SEK",
			"message": "Kingston USB Flash Drive 8 GB",
			"status": "PAID",
			"dateCreated": "2019-01-02T14:29:51.092Z",
			"datePaid": "2019-01-02T14:29:55.093Z",
			"errorCode": null,
			"errorMessage": null
		}`, nil), nil
	})

	payment, err := client.GetPayment(context.Background(), paymentID)

	require.NoError(t, err)
	assert.Equal(t, paymentID, payment.ID)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, swish.SEK, payment.Currency)
	assert.Equal(t, swish.StatusPaid, payment.Status)
	assert.Equal(t, "1E2FC19E5E5E4E18916609B7F8911C12", payment.PaymentReference)
	require.NotNil(t, payment.DatePaid)
	assert.Equal(t, 2019, payment.DatePaid.Year())
	assert.Empty(t, payment.ErrorCode)
}

func TestGetPayment_Failures(t *testing.T) {
	t.Run("not found keeps body", func(t *testing.T) {
		client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
			return respond(http.StatusNotFound, "Payment request not found", nil), nil
		})

		_, err := client.GetPayment(context.Background(), "missing")

		var reqErr *swish.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
		assert.Equal(t, "Payment request not found", reqErr.Body)
	})

	t.Run("invalid json", func(t *testing.T) {
		client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
			return respond(http.StatusOK, `{"id": 12`, nil), nil
		})

		_, err := client.GetPayment(context.Background(), paymentID)

		var decodeErr *swish.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, `{"id": 12`, decodeErr.Body)
	})

	t.Run("empty id", func(t *testing.T) {
		client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
			t.Fatal("no request expected")
			return nil, nil
		})

		_, err := client.GetPayment(context.Background(), "")

		require.ErrorIs(t, err, swish.ErrInvalidParams)
	})
}

func TestCreateRefund(t *testing.T) {
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/swish-cpcapi/api/v1/refunds", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, testMerchantAlias, body["payerAlias"])
		assert.Equal(t, "1E2FC19E5E5E4E18916609B7F8911C12", body["originalPaymentReference"])
		assert.Equal(t, "50.50", body["amount"])
		assert.Equal(t, "SEK", body["currency"])

		h := http.Header{}
		h.Set("Location", stubBaseURL+"/refunds/ABC2D7406ECE4542A80152D909EF9F6B")
		return respond(http.StatusCreated, "", h), nil
	})

	created, err := client.CreateRefund(context.Background(), swish.RefundParams{
		OriginalPaymentReference: "1E2FC19E5E5E4E18916609B7F8911C12",
		CallbackURL:              "https://example.com/api/swishcb/refunds",
		Amount:                   decimal.RequireFromString("50.5"),
		Message:                  "Refund for Kingston USB Flash Drive 8 GB",
	})

	require.NoError(t, err)
	assert.Equal(t, "ABC2D7406ECE4542A80152D909EF9F6B", created.ID)
}

func TestCreateRefund_RequiresOriginalReference(t *testing.T) {
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})

	_, err := client.CreateRefund(context.Background(), swish.RefundParams{
		CallbackURL: "https://example.com/api/swishcb/refunds",
		Amount:      decimal.NewFromInt(1),
	})

	var validationErr *swish.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "originalPaymentReference", validationErr.Field)
}

func TestGetRefund(t *testing.T) {
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/swish-cpcapi/api/v1/refunds/ABC2D7406ECE4542A80152D909EF9F6B", r.URL.Path)
		return respond(http.StatusOK, `{
			"id": "ABC2D7406ECE4542A80152D909EF9F6B",
			"payerPaymentReference": "0123456789",
			"originalPaymentReference": "1E2FC19E5E5E4E18916609B7F8911C12",
			"payerAlias": "1231181189",
			"amount": 50.50,
			"currency": "SEK",
			"status": "DEBITED",
			"dateCreated": "2019-01-03T10:00:00Z",
			"datePaid": null
		}`, nil), nil
	})

	refund, err := client.GetRefund(context.Background(), "ABC2D7406ECE4542A80152D909EF9F6B")

	require.NoError(t, err)
	assert.Equal(t, swish.StatusDebited, refund.Status)
	assert.True(t, refund.Amount.Equal(decimal.RequireFromString("50.5")))
	assert.Nil(t, refund.DatePaid)
}
