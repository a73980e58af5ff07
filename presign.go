package godatabend

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const defaultPresignExpiry = 15 * time.Minute

// PresignedRequest is a presigned URL together with the headers its
// signature covers. The headers must be sent with the request.
type PresignedRequest struct {
	Method  string
	URL     string
	Headers map[string]string
}

// StagePresigner signs stage object requests with storage credentials held by
// the client.
type StagePresigner interface {
	PresignUpload(ctx context.Context, key string, expires time.Duration) (*PresignedRequest, error)
	PresignDownload(ctx context.Context, key string, expires time.Duration) (*PresignedRequest, error)
}

func presignExpiry(expires time.Duration) time.Duration {
	if expires <= 0 {
		return defaultPresignExpiry
	}
	return expires
}

// objectKey joins a stage prefix and a relative object path.
func objectKey(prefix string, key string) string {
	key = strings.TrimLeft(key, "/")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

// flattenHeaders keeps the signed headers a caller has to send. Host is set
// by the transport.
func flattenHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) == 0 || strings.EqualFold(k, "Host") {
			continue
		}
		headers[http.CanonicalHeaderKey(k)] = strings.Join(v, ",")
	}
	return headers
}

func presignError(method string, key string, err error) error {
	return &DatabendError{
		Number:      ErrCodeFailedToPresign,
		Message:     errMsgFailedToPresign,
		MessageArgs: []interface{}{method, key},
		Cause:       err,
	}
}
