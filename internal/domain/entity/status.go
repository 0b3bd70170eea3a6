package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrAmountPrecision   = errors.New("amount must have at most two decimals")
	ErrNotPaid           = errors.New("payment is not paid")
	ErrNoRequestToken    = errors.New("payment has no request token")
)

// ValidateAmount accepts positive amounts expressed in whole öre.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return ErrAmountPrecision
	}
	return nil
}

// Status mirrors the status strings Swish reports for payments and refunds.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusPaid      Status = "PAID"
	StatusDeclined  Status = "DECLINED"
	StatusError     Status = "ERROR"
	StatusCancelled Status = "CANCELLED"
	StatusDebited   Status = "DEBITED"
)

func (s Status) Final() bool {
	switch s {
	case StatusPaid, StatusDeclined, StatusError, StatusCancelled:
		return true
	default:
		return false
	}
}

// Failed reports a final status that moved no money.
func (s Status) Failed() bool {
	return s == StatusDeclined || s == StatusError || s == StatusCancelled
}

// StatusUpdate is what Swish reports about a request, either in a callback or
// when the request is fetched.
type StatusUpdate struct {
	Status           Status
	PaymentReference string
	DatePaid         *time.Time
	ErrorCode        string
	ErrorMessage     string
}

// transition reports whether moving from current to next is allowed. A final
// status is never replaced.
func transition(current, next Status) bool {
	if next == "" || next == current {
		return false
	}
	return !current.Final()
}
