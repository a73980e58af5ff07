package godatabend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestDatabendErrorFormat(t *testing.T) {
	err := &DatabendError{Number: ErrCodeRowLengthMismatch, Message: errMsgRowLengthMismatch, MessageArgs: []interface{}{2, 3}}
	assertEqualE(t, err.Error(), "270002: row has 2 cells but the schema has 3 columns")

	cause := errors.New("boom")
	err = &DatabendError{Number: ErrCodeTransferTransport, Message: errMsgTransferTransport, MessageArgs: []interface{}{"upload", 1}, Cause: cause}
	assertEqualE(t, err.Error(), "271001: upload attempt 1 failed: boom")
	assertErrIsE(t, err, cause)
	assertErrIsE(t, err, ErrTransferTransport)
	assertFalseE(t, errors.Is(err, ErrUnexpectedHTTPStatus))
}

func TestDatabendErrorIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("decoding row 4: %w", invalidLiteralError(KindInt8, "x", nil))
	assertErrIsE(t, err, ErrInvalidLiteral)
	var de *DatabendError
	assertErrorsAsF(t, err, &de)
	assertEqualE(t, de.Number, ErrCodeInvalidLiteral)
}

func TestTransferErrorFormat(t *testing.T) {
	cause := &DatabendError{Number: ErrCodeUnexpectedHTTPStatus, Message: errMsgUnexpectedHTTPStatus, MessageArgs: []interface{}{"download", 5, 503}}
	err := &TransferError{Number: ErrCodeRetryExhausted, Op: "download", Attempts: 5, Elapsed: time.Second, Cause: cause}
	assertEqualE(t, err.Error(), "271003: download failed after 5 attempts in 1s. last error: 271002: download attempt 5 returned HTTP status 503")
	assertErrIsE(t, err, ErrRetryExhausted)
	assertErrIsE(t, err, ErrUnexpectedHTTPStatus)
	assertFalseE(t, errors.Is(err, ErrTransferCancelled))

	err = &TransferError{Number: ErrCodeTransferCancelled, Op: "upload", Attempts: 2, Elapsed: 100 * time.Millisecond, Cause: context.Canceled}
	assertEqualE(t, err.Error(), "271004: upload cancelled after 2 attempts in 100ms: context canceled")
	assertErrIsE(t, err, ErrTransferCancelled)
	assertErrIsE(t, err, context.Canceled)
}

func TestUnexpectedNullError(t *testing.T) {
	err := unexpectedNullError(KindUInt64)
	assertEqualE(t, err.Error(), "270001: unexpected null for non-nullable uint64 column")
	assertErrIsE(t, err, ErrInvalidLiteral)
}
