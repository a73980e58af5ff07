package godatabend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	opUpload   = "upload"
	opDownload = "download"

	tracerName = "github.com/datafuselabs/databend-go"

	headerContentLength = "Content-Length"
	headerContentType   = "Content-Type"
	headerUserAgent     = "User-Agent"
)

// TransferClient moves payloads to and from object storage through presigned
// URLs. Each call retries failed attempts with a linear backoff; a
// TransferClient is safe for concurrent use.
type TransferClient struct {
	cfg     *Config
	client  clientInterface
	clock   clock
	metrics *TransferMetrics
	tracer  trace.Tracer
}

// TransferClientOption configures a TransferClient.
type TransferClientOption func(*TransferClient)

// WithHTTPClient makes the client issue requests through c. The transport
// settings of the Config are ignored.
func WithHTTPClient(c *http.Client) TransferClientOption {
	return func(tc *TransferClient) {
		tc.client = c
	}
}

// WithTransferMetrics records attempts and outcomes on m.
func WithTransferMetrics(m *TransferMetrics) TransferClientOption {
	return func(tc *TransferClient) {
		tc.metrics = m
	}
}

// WithTracerProvider makes the client create transfer spans from tp instead
// of the global provider.
func WithTracerProvider(tp trace.TracerProvider) TransferClientOption {
	return func(tc *TransferClient) {
		tc.tracer = tp.Tracer(tracerName)
	}
}

func withClock(c clock) TransferClientOption {
	return func(tc *TransferClient) {
		tc.clock = c
	}
}

// NewTransferClient creates a TransferClient. A nil cfg uses DefaultConfig.
func NewTransferClient(cfg *Config, opts ...TransferClientOption) *TransferClient {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	c.fillMissingDefaults()
	tc := &TransferClient{
		cfg:   &c,
		clock: realClock{},
	}
	for _, opt := range opts {
		opt(tc)
	}
	if tc.client == nil {
		tc.client = &http.Client{Transport: newTransportFactory(tc.cfg).createTransport()}
	}
	if tc.tracer == nil {
		tc.tracer = otel.Tracer(tracerName)
	}
	return tc
}

// Upload writes src into a PUT request against presignedURL. src is read
// once and never rewound: if an attempt fails after src was partially
// consumed, the retried attempt sends the remainder only. Callers that need
// safe retries use UploadFrom or UploadFile. A Content-Length header sets the
// request length.
func (tc *TransferClient) Upload(ctx context.Context, src io.Reader, headers map[string]string, presignedURL string) error {
	if _, isCloser := src.(io.Closer); isCloser {
		// keep the transport from closing the caller's stream after the first attempt
		src = struct{ io.Reader }{src}
	}
	return tc.upload(ctx, presignedURL, func(ctx context.Context, attempt int) (*http.Request, error) {
		if attempt > 1 {
			logger.WithContext(ctx).Warnf("retrying upload of a single-use stream, attempt %v", attempt)
		}
		return newUploadRequest(ctx, presignedURL, src, -1, headers)
	})
}

// UploadFrom uploads the payload returned by open, reopening it for every
// attempt. A negative size leaves the length to the transport.
func (tc *TransferClient) UploadFrom(ctx context.Context, open SourceOpener, size int64, headers map[string]string, presignedURL string) error {
	return tc.upload(ctx, presignedURL, func(ctx context.Context, _ int) (*http.Request, error) {
		body, err := open()
		if err != nil {
			return nil, err
		}
		req, err := newUploadRequest(ctx, presignedURL, body, size, headers)
		if err != nil {
			body.Close()
			return nil, err
		}
		return req, nil
	})
}

// UploadFile uploads the file at path. The Content-Type header is detected
// from the file content unless headers set one.
func (tc *TransferClient) UploadFile(ctx context.Context, path string, headers map[string]string, presignedURL string) error {
	info, err := inspectFile(path)
	if err != nil {
		return err
	}
	fileHeaders := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		fileHeaders[http.CanonicalHeaderKey(k)] = v
	}
	if _, ok := fileHeaders[headerContentType]; !ok {
		fileHeaders[headerContentType] = info.contentType
	}
	delete(fileHeaders, headerContentLength)
	return tc.UploadFrom(ctx, FileSource(info.path), info.size, fileHeaders, presignedURL)
}

func (tc *TransferClient) upload(ctx context.Context, presignedURL string, newRequest requestFunc) error {
	res, err := tc.run(ctx, opUpload, presignedURL, newRequest)
	if err != nil {
		return err
	}
	drainAndClose(res.Body)
	return nil
}

// Download issues a GET against presignedURL and returns the response body,
// which the caller reads lazily and must close. Only obtaining the response is
// retried; a failure while reading the body is returned to the caller.
func (tc *TransferClient) Download(ctx context.Context, presignedURL string, headers map[string]string) (io.ReadCloser, error) {
	res, err := tc.run(ctx, opDownload, presignedURL, func(ctx context.Context, _ int) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, presignedURL, nil)
		if err != nil {
			return nil, err
		}
		setHeaders(req, headers)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

// DownloadTo copies the downloaded payload into w and returns the number of
// bytes written.
func (tc *TransferClient) DownloadTo(ctx context.Context, presignedURL string, headers map[string]string, w io.Writer) (int64, error) {
	body, err := tc.Download(ctx, presignedURL, headers)
	if err != nil {
		return 0, err
	}
	defer body.Close()
	return io.Copy(w, body)
}

// DownloadFile stores the downloaded payload at dstPath. The file is written
// next to its destination and renamed into place once complete.
func (tc *TransferClient) DownloadFile(ctx context.Context, presignedURL string, headers map[string]string, dstPath string) (n int64, err error) {
	dstPath = expandUser(dstPath)
	tmp, err := os.CreateTemp(filepath.Dir(dstPath), "."+baseName(dstPath)+".*.part")
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if n, err = tc.DownloadTo(ctx, presignedURL, headers, tmp); err != nil {
		return 0, err
	}
	if err = tmp.Close(); err != nil {
		return 0, err
	}
	if err = os.Rename(tmp.Name(), dstPath); err != nil {
		return 0, err
	}
	return n, nil
}

func (tc *TransferClient) run(ctx context.Context, op string, presignedURL string, newRequest requestFunc) (*http.Response, error) {
	target, err := parsePresignedURL(presignedURL)
	if err != nil {
		return nil, err
	}
	transferID := uuid.NewString()
	ctx = withTransferID(ctx, transferID)
	ctx, span := tc.tracer.Start(ctx, "databend.stage."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("databend.transfer.id", transferID),
			attribute.String("databend.transfer.op", op),
			attribute.String("server.address", target.Host),
		))
	defer span.End()

	logger.WithContext(ctx).Debugf("starting %v to %v", op, redactURL(target))
	start := tc.clock.Now()
	res, attempts, err := newRetryTransfer(ctx, tc.client, op, newRequest).
		withConfig(tc.cfg).
		withClock(tc.clock).
		observe(func(a transferAttempt) {
			tc.metrics.observeAttempt(op, a)
			span.AddEvent("attempt", trace.WithAttributes(
				attribute.Int("databend.transfer.attempt", a.ordinal),
				attribute.String("databend.transfer.result", attemptResult(a.cause))))
		}).
		execute()
	elapsed := tc.clock.Now().Sub(start)
	tc.metrics.observeTransfer(op, err, elapsed)
	span.SetAttributes(
		attribute.Int("databend.transfer.attempts", attempts),
		attribute.String("databend.transfer.outcome", transferOutcome(err)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, transferOutcome(err))
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	logger.WithContext(ctx).Debugf("%v finished after %v attempts in %v", op, attempts, elapsed)
	return res, nil
}

func newUploadRequest(ctx context.Context, presignedURL string, body io.Reader, size int64, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, body)
	if err != nil {
		return nil, err
	}
	setHeaders(req, headers)
	if size >= 0 {
		req.ContentLength = size
	}
	if cl := req.Header.Get(headerContentLength); cl != "" {
		length, err := strconv.ParseInt(cl, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %v header: %w", headerContentLength, err)
		}
		if length < 0 {
			return nil, fmt.Errorf("invalid %v header: %v", headerContentLength, length)
		}
		req.ContentLength = length
		req.Header.Del(headerContentLength)
		size = length
	}
	if size == 0 {
		// a zero length with a non-nil body means unknown length to the transport
		if closer, ok := body.(io.Closer); ok {
			closer.Close()
		}
		req.Body = http.NoBody
		req.GetBody = nil
	}
	return req, nil
}

func setHeaders(req *http.Request, headers map[string]string) {
	req.Header.Set(headerUserAgent, userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

// parsePresignedURL rejects URLs that cannot be sent, so a malformed URL is
// never retried.
func parsePresignedURL(presignedURL string) (*url.URL, error) {
	if presignedURL == "" {
		return nil, ErrInvalidPresignedURL
	}
	u, err := url.Parse(presignedURL)
	if err == nil && ((u.Scheme != "http" && u.Scheme != "https") || u.Host == "") {
		err = errors.New("presigned url must be an absolute http or https url")
	}
	if err != nil {
		return nil, &DatabendError{
			Number:  ErrCodeInvalidPresignedURL,
			Message: errMsgInvalidPresignedURL,
			Cause:   err,
		}
	}
	return u, nil
}

// redactURL drops the query of a presigned URL, which carries its signature.
func redactURL(u *url.URL) string {
	redacted := *u
	if redacted.RawQuery != "" {
		redacted.RawQuery = "REDACTED"
	}
	redacted.User = nil
	return redacted.String()
}
