package swish

import (
	"encoding/json"
	"io"
)

// ParsePaymentCallback decodes the payment object Swish posts to the callback URL.
func ParsePaymentCallback(r io.Reader) (*Payment, error) {
	var payment Payment
	if err := decodeCallback(r, &payment); err != nil {
		return nil, err
	}
	if payment.ID == "" {
		return nil, &ValidationError{Field: "id", Reason: "is missing in callback"}
	}
	return &payment, nil
}

// ParseRefundCallback decodes the refund object Swish posts to the callback URL.
func ParseRefundCallback(r io.Reader) (*Refund, error) {
	var refund Refund
	if err := decodeCallback(r, &refund); err != nil {
		return nil, err
	}
	if refund.ID == "" {
		return nil, &ValidationError{Field: "id", Reason: "is missing in callback"}
	}
	return &refund, nil
}

func decodeCallback(r io.Reader, out any) error {
	body, err := io.ReadAll(io.LimitReader(r, maxResponseSize))
	if err != nil {
		return &DecodeError{Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Body: string(body), Err: err}
	}
	return nil
}
