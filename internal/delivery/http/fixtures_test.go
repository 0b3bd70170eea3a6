package http_test

import "github.com/Xausdorf/swish-pay-hub/internal/domain/payment"

var (
	paymentCreated = payment.CreatedPayment{
		SwishID:      "AB23D7406ECE4542A80152D909EF9F6B",
		Location:     "https://mss.cpc.getswish.net/swish-cpcapi/api/v1/paymentrequests/AB23D7406ECE4542A80152D909EF9F6B",
		RequestToken: "c28a4061470f4af48973bd2a4642b4fa",
	}
	paymentRejected = payment.RejectedError{
		StatusCode: 422,
		Code:       "RP06",
		Message:    "A payment request already exists for that payer",
	}
	refundCreated = payment.CreatedRefund{
		SwishID:  "ABC2D7406ECE4542A80152D909EF9F6B",
		Location: "https://mss.cpc.getswish.net/swish-cpcapi/api/v1/refunds/ABC2D7406ECE4542A80152D909EF9F6B",
	}
)
