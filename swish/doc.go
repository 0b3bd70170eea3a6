/*
Package swish is a client for the Swish merchant API (payment requests and refunds).

Every call is authenticated with the merchant's client certificate over mutual TLS.
The certificate bundle issued by Swish is a PKCS#12 file; a PEM certificate and key
pair works as well.

	client, err := swish.New(swish.Config{
	    MerchantAlias: "1231181189",
	    CertPath:      "certs/Swish_Merchant_TestCertificate_1234679304.p12",
	    Passphrase:    "swish",
	    RootCertPath:  "certs/Swish_TLS_RootCA.pem",
	})

	created, err := client.CreatePayment(ctx, swish.PaymentParams{
	    Amount:      decimal.RequireFromString("100.00"),
	    CallbackURL: "https://example.com/api/swishcb/paymentrequests",
	    Message:     "Kingston USB Flash Drive 8 GB",
	})

Failures are returned as one of *TLSError, *TransportError, *RequestError,
*DecodeError or *ValidationError. Nothing is retried.
*/
package swish
