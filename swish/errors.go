package swish

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidParams = errors.New("swish: invalid params")

// ErrorCode is the errorCode field of a Swish error object.
type ErrorCode string

const (
	ErrorCodeInvalidPayeeReference ErrorCode = "FF08"
	ErrorCodeInvalidCallbackURL    ErrorCode = "RP03"
	ErrorCodeInvalidPayerAlias     ErrorCode = "BE18"
	ErrorCodeMissingPayeeAlias     ErrorCode = "RP01"
	ErrorCodeInvalidAmount         ErrorCode = "PA02"
	ErrorCodeAmountTooLow          ErrorCode = "AM06"
	ErrorCodeAmountTooLarge        ErrorCode = "AM02"
	ErrorCodeInvalidCurrency       ErrorCode = "AM03"
	ErrorCodeInvalidMessage        ErrorCode = "RP02"
	ErrorCodeActiveRequestExists   ErrorCode = "RP06"
	ErrorCodePayerNotEnrolled      ErrorCode = "ACMT03"
	ErrorCodeCounterpartInactive   ErrorCode = "ACMT01"
	ErrorCodePayeeNotEnrolled      ErrorCode = "ACMT07"
	ErrorCodeInvalidParameter      ErrorCode = "PA01"
	ErrorCodeOriginalNotFound      ErrorCode = "RF02"
	ErrorCodeTransactionDeclined   ErrorCode = "RF07"
	ErrorCodeRefundAmountTooLarge  ErrorCode = "RF08"
	ErrorCodeTimeout               ErrorCode = "TM01"
	ErrorCodeCancelledByPayer      ErrorCode = "BANKIDCL"
	ErrorCodeTechnicalError        ErrorCode = "FF10"
)

// ValidationError is returned before any request is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("swish: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidParams
}

// TLSError means the client identity or the trusted root could not be loaded.
type TLSError struct {
	Path string
	Err  error
}

func (e *TLSError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("swish: tls setup: %v", e.Err)
	}
	return fmt.Sprintf("swish: tls setup %s: %v", e.Path, e.Err)
}

func (e *TLSError) Unwrap() error { return e.Err }

// TransportError wraps failures below HTTP: dialing, handshake, cancellation and
// reading the response body.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("swish: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is one entry of the error list Swish returns with a rejected request.
type APIError struct {
	Code                  ErrorCode `json:"errorCode"`
	Message               string    `json:"errorMessage"`
	AdditionalInformation string    `json:"additionalInformation,omitempty"`
}

// RequestError is returned for any non-2xx response.
type RequestError struct {
	StatusCode int
	Errors     []APIError
	Body       string
}

func (e *RequestError) Error() string {
	if len(e.Errors) == 0 {
		if e.Body == "" {
			return fmt.Sprintf("swish: request rejected with status %d", e.StatusCode)
		}
		return fmt.Sprintf("swish: request rejected with status %d: %s", e.StatusCode, e.Body)
	}
	parts := make([]string, 0, len(e.Errors))
	for _, apiErr := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s %s", apiErr.Code, apiErr.Message))
	}
	return fmt.Sprintf("swish: request rejected with status %d: %s", e.StatusCode, strings.Join(parts, "; "))
}

func (e *RequestError) HasCode(code ErrorCode) bool {
	for _, apiErr := range e.Errors {
		if apiErr.Code == code {
			return true
		}
	}
	return false
}

// DecodeError is returned when a successful response cannot be turned into a result.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("swish: decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// newRequestError parses the body of a rejected request. Swish answers with a
// list of error objects; a single object or plain text is also accepted.
func newRequestError(status int, body []byte) *RequestError {
	reqErr := &RequestError{
		StatusCode: status,
		Body:       strings.TrimSpace(string(body)),
	}

	var list []APIError
	if err := json.Unmarshal(body, &list); err == nil {
		reqErr.Errors = list
		return reqErr
	}

	var single APIError
	if err := json.Unmarshal(body, &single); err == nil && (single.Code != "" || single.Message != "") {
		reqErr.Errors = []APIError{single}
	}
	return reqErr
}
