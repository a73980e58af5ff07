// Package godatabend is the decoding and stage transfer core of the Go Databend driver.
package godatabend

import (
	"errors"
	"fmt"
	"time"
)

// DatabendError is a error type including various Databend specific information.
type DatabendError struct {
	Number      int
	Message     string
	MessageArgs []interface{}
	Cause       error
}

func (de *DatabendError) Error() string {
	message := de.Message
	if len(de.MessageArgs) > 0 {
		message = fmt.Sprintf(de.Message, de.MessageArgs...)
	}
	if de.Cause != nil {
		return fmt.Sprintf("%06d: %s: %v", de.Number, message, de.Cause)
	}
	return fmt.Sprintf("%06d: %s", de.Number, message)
}

// Unwrap returns the underlying cause, if any.
func (de *DatabendError) Unwrap() error {
	return de.Cause
}

// Is reports whether target is a *DatabendError with the same error code.
func (de *DatabendError) Is(target error) bool {
	var t *DatabendError
	if !errors.As(target, &t) {
		return false
	}
	return t.Number == de.Number
}

const (
	// decoding

	// ErrCodeInvalidLiteral is an error code for the case where a cell cannot be parsed under its column kind.
	ErrCodeInvalidLiteral = 270001
	// ErrCodeRowLengthMismatch is an error code for the case where a row has a different width than the schema.
	ErrCodeRowLengthMismatch = 270002
	// ErrCodeInvalidDataPage is an error code for the case where a JSON data page cannot be parsed.
	ErrCodeInvalidDataPage = 270003

	// transfer

	// ErrCodeTransferTransport is an error code for a single failed network attempt.
	ErrCodeTransferTransport = 271001
	// ErrCodeUnexpectedHTTPStatus is an error code for an attempt answered with a non-success status.
	ErrCodeUnexpectedHTTPStatus = 271002
	// ErrCodeRetryExhausted is an error code for the case where the retry cap was reached.
	ErrCodeRetryExhausted = 271003
	// ErrCodeTransferCancelled is an error code for the case where the caller cancelled during backoff.
	ErrCodeTransferCancelled = 271004
	// ErrCodeInvalidPresignedURL is an error code for an empty or unparsable presigned URL.
	ErrCodeInvalidPresignedURL = 271005
	// ErrCodeFailedToPresign is an error code for the case where a stage presigner could not sign a request.
	ErrCodeFailedToPresign = 271006

	// configuration

	// ErrCodeClientConfigFailed is an error code for the case where the client config file is invalid.
	ErrCodeClientConfigFailed = 272001
)

const (
	errMsgInvalidLiteral       = "invalid %v literal: %q"
	errMsgUnexpectedNull       = "unexpected null for non-nullable %v column"
	errMsgRowLengthMismatch    = "row has %v cells but the schema has %v columns"
	errMsgInvalidDataPage      = "failed to parse data page"
	errMsgTransferTransport    = "%v attempt %v failed"
	errMsgUnexpectedHTTPStatus = "%v attempt %v returned HTTP status %v"
	errMsgInvalidPresignedURL  = "invalid presigned url"
	errMsgFailedToPresign      = "failed to presign %v request for %v"
	errMsgClientConfigFailed   = "client configuration failed: %v"
)

var (
	// preformatted errors, compared with errors.Is

	// ErrInvalidLiteral is returned if a cell cannot be decoded under its column kind.
	ErrInvalidLiteral = &DatabendError{
		Number:  ErrCodeInvalidLiteral,
		Message: "invalid literal",
	}
	// ErrRowLengthMismatch is returned if a row width differs from the schema.
	ErrRowLengthMismatch = &DatabendError{
		Number:  ErrCodeRowLengthMismatch,
		Message: "row length mismatch",
	}
	// ErrInvalidDataPage is returned if a JSON data page is malformed.
	ErrInvalidDataPage = &DatabendError{
		Number:  ErrCodeInvalidDataPage,
		Message: errMsgInvalidDataPage,
	}
	// ErrTransferTransport matches the cause recorded for a failed network attempt.
	ErrTransferTransport = &DatabendError{
		Number:  ErrCodeTransferTransport,
		Message: "transfer transport error",
	}
	// ErrUnexpectedHTTPStatus matches the cause recorded for a non-success HTTP response.
	ErrUnexpectedHTTPStatus = &DatabendError{
		Number:  ErrCodeUnexpectedHTTPStatus,
		Message: "unexpected http status",
	}
	// ErrRetryExhausted is returned when a transfer gave up after the maximum number of attempts.
	ErrRetryExhausted = &DatabendError{
		Number:  ErrCodeRetryExhausted,
		Message: "retry exhausted",
	}
	// ErrTransferCancelled is returned when a transfer was cancelled while backing off.
	ErrTransferCancelled = &DatabendError{
		Number:  ErrCodeTransferCancelled,
		Message: "transfer cancelled",
	}
	// ErrInvalidPresignedURL is returned for an empty or unparsable presigned url.
	ErrInvalidPresignedURL = &DatabendError{
		Number:  ErrCodeInvalidPresignedURL,
		Message: errMsgInvalidPresignedURL,
	}
	// ErrFailedToPresign is returned when a stage presigner cannot sign a request.
	ErrFailedToPresign = &DatabendError{
		Number:  ErrCodeFailedToPresign,
		Message: "failed to presign",
	}
	// ErrClientConfigFailed is returned for an unreadable or invalid client config file.
	ErrClientConfigFailed = &DatabendError{
		Number:  ErrCodeClientConfigFailed,
		Message: "client configuration failed",
	}
)

// TransferError is returned when an upload or download gives up. Number is
// either ErrCodeRetryExhausted or ErrCodeTransferCancelled.
type TransferError struct {
	Number   int
	Op       string
	Attempts int
	Elapsed  time.Duration
	Cause    error
}

func (te *TransferError) Error() string {
	switch te.Number {
	case ErrCodeTransferCancelled:
		return fmt.Sprintf("%06d: %v cancelled after %v attempts in %v: %v",
			te.Number, te.Op, te.Attempts, te.Elapsed, te.Cause)
	default:
		return fmt.Sprintf("%06d: %v failed after %v attempts in %v. last error: %v",
			te.Number, te.Op, te.Attempts, te.Elapsed, te.Cause)
	}
}

func (te *TransferError) Unwrap() error {
	return te.Cause
}

// Is matches the preformatted *DatabendError with the same code.
func (te *TransferError) Is(target error) bool {
	var t *DatabendError
	if !errors.As(target, &t) {
		return false
	}
	return t.Number == te.Number
}

func invalidLiteralError(kind Kind, raw string, cause error) error {
	return &DatabendError{
		Number:      ErrCodeInvalidLiteral,
		Message:     errMsgInvalidLiteral,
		MessageArgs: []interface{}{kind, raw},
		Cause:       cause,
	}
}

func unexpectedNullError(kind Kind) error {
	return &DatabendError{
		Number:      ErrCodeInvalidLiteral,
		Message:     errMsgUnexpectedNull,
		MessageArgs: []interface{}{kind},
	}
}
