package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrIdempotencyKeyReused = errors.New("idempotency key reused with a different request")

// IdempotencyRecord remembers the outcome of a create call. A remote rejection
// is stored with a nil payment id so the same key replays the same failure.
type IdempotencyRecord struct {
	key          string
	fingerprint  string
	paymentID    uuid.UUID
	responseCode int
	responseBody []byte
	createdAt    time.Time
}

func NewIdempotencyRecord(key, fingerprint string, paymentID uuid.UUID, code int, body []byte) *IdempotencyRecord {
	return &IdempotencyRecord{
		key:          key,
		fingerprint:  fingerprint,
		paymentID:    paymentID,
		responseCode: code,
		responseBody: body,
		createdAt:    time.Now(),
	}
}

func ReconstructIdempotencyRecord(
	key, fingerprint string,
	paymentID uuid.UUID,
	code int,
	body []byte,
	createdAt time.Time,
) *IdempotencyRecord {
	return &IdempotencyRecord{
		key:          key,
		fingerprint:  fingerprint,
		paymentID:    paymentID,
		responseCode: code,
		responseBody: body,
		createdAt:    createdAt,
	}
}

// Check fails when the key was first used for a request with another fingerprint.
func (r *IdempotencyRecord) Check(fingerprint string) error {
	if r.fingerprint != fingerprint {
		return ErrIdempotencyKeyReused
	}
	return nil
}

func (r *IdempotencyRecord) Key() string          { return r.key }
func (r *IdempotencyRecord) Fingerprint() string  { return r.fingerprint }
func (r *IdempotencyRecord) PaymentID() uuid.UUID { return r.paymentID }
func (r *IdempotencyRecord) ResponseCode() int    { return r.responseCode }
func (r *IdempotencyRecord) ResponseBody() []byte { return r.responseBody }
func (r *IdempotencyRecord) CreatedAt() time.Time { return r.createdAt }
