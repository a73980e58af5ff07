package godatabend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"
)

type clientInterface interface {
	Do(req *http.Request) (*http.Response, error)
}

// clock abstracts time so the backoff schedule can be driven by tests.
type clock interface {
	Now() time.Time
	// Sleep waits for d, returning the context error if ctx is done first.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	await := time.NewTimer(d)
	defer await.Stop()
	select {
	case <-await.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// requestFunc builds the request of one attempt. The context it receives is
// detached from caller cancellation.
type requestFunc func(ctx context.Context, attempt int) (*http.Request, error)

type transferState int

const (
	stateAttempting transferState = iota
	stateBackingOff
	stateSucceeded
	stateExhausted
	stateCancelled
)

func (s transferState) String() string {
	switch s {
	case stateAttempting:
		return "attempting"
	case stateBackingOff:
		return "backing off"
	case stateSucceeded:
		return "succeeded"
	case stateExhausted:
		return "exhausted"
	case stateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// transferAttempt is the record of one HTTP exchange.
type transferAttempt struct {
	ordinal int
	elapsed time.Duration
	cause   error
}

type retryTransfer struct {
	ctx            context.Context
	client         clientInterface
	clock          clock
	op             string
	newRequest     requestFunc
	maxAttempts    int
	backoffUnit    time.Duration
	attemptTimeout time.Duration
	onAttempt      func(transferAttempt)
}

func newRetryTransfer(ctx context.Context, client clientInterface, op string, newRequest requestFunc) *retryTransfer {
	return &retryTransfer{
		ctx:         ctx,
		client:      client,
		clock:       realClock{},
		op:          op,
		newRequest:  newRequest,
		maxAttempts: defaultMaxTransferAttempts,
		backoffUnit: defaultTransferBackoffUnit,
	}
}

func (r *retryTransfer) withConfig(cfg *Config) *retryTransfer {
	r.maxAttempts = cfg.MaxTransferAttempts
	r.backoffUnit = cfg.TransferBackoffUnit
	r.attemptTimeout = cfg.AttemptTimeout
	return r
}

func (r *retryTransfer) withClock(c clock) *retryTransfer {
	r.clock = c
	return r
}

func (r *retryTransfer) observe(f func(transferAttempt)) *retryTransfer {
	r.onAttempt = f
	return r
}

// execute runs attempts until one succeeds, the attempt cap is reached or the
// caller cancels during a backoff wait. The caller owns the returned body.
func (r *retryTransfer) execute() (*http.Response, int, error) {
	start := r.clock.Now()
	state := stateAttempting
	attempts := 0
	var last transferAttempt
	var res *http.Response
	var cancelCause error

	for {
		switch state {
		case stateAttempting:
			attempts++
			attemptCtx, cancel := r.attemptContext()
			req, err := r.newRequest(attemptCtx, attempts)
			if err != nil {
				cancel()
				return nil, attempts, err
			}
			var cause error
			res, cause = r.do(req, attempts, cancel)
			last = transferAttempt{ordinal: attempts, elapsed: r.clock.Now().Sub(start), cause: cause}
			if r.onAttempt != nil {
				r.onAttempt(last)
			}
			switch {
			case last.cause == nil:
				state = stateSucceeded
			case attempts >= r.maxAttempts:
				state = stateExhausted
			default:
				state = stateBackingOff
			}
		case stateBackingOff:
			sleepTime := time.Duration(attempts) * r.backoffUnit
			logger.WithContext(r.ctx).Debugf("%v attempt %v failed: %v. sleeping %v before retrying",
				r.op, attempts, last.cause, sleepTime)
			if err := r.clock.Sleep(r.ctx, sleepTime); err != nil {
				cancelCause = err
				state = stateCancelled
				continue
			}
			state = stateAttempting
		case stateSucceeded:
			return res, attempts, nil
		case stateExhausted:
			elapsed := r.clock.Now().Sub(start)
			logger.WithContext(r.ctx).Warnf("%v gave up after %v attempts in %v: %v", r.op, attempts, elapsed, last.cause)
			return nil, attempts, &TransferError{
				Number:   ErrCodeRetryExhausted,
				Op:       r.op,
				Attempts: attempts,
				Elapsed:  elapsed,
				Cause:    last.cause,
			}
		case stateCancelled:
			elapsed := r.clock.Now().Sub(start)
			logger.WithContext(r.ctx).Infof("%v cancelled after %v attempts. last error: %v", r.op, attempts, last.cause)
			return nil, attempts, &TransferError{
				Number:   ErrCodeTransferCancelled,
				Op:       r.op,
				Attempts: attempts,
				Elapsed:  elapsed,
				Cause:    cancelCause,
			}
		}
	}
}

// attemptContext detaches the attempt from caller cancellation, which is only
// observed while backing off.
func (r *retryTransfer) attemptContext() (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.ctx)
	if r.attemptTimeout > 0 {
		return context.WithTimeout(ctx, r.attemptTimeout)
	}
	return context.WithCancel(ctx)
}

// do issues one request. A transport failure or a non-2xx status is returned
// as the cause of the attempt.
func (r *retryTransfer) do(req *http.Request, ordinal int, cancel context.CancelFunc) (*http.Response, error) {
	res, err := r.client.Do(req)
	if err != nil {
		cancel()
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
				urlErr.URL = redactURL(u)
			}
		}
		return nil, &DatabendError{
			Number:      ErrCodeTransferTransport,
			Message:     errMsgTransferTransport,
			MessageArgs: []interface{}{r.op, ordinal},
			Cause:       err,
		}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		drainAndClose(res.Body)
		cancel()
		return nil, &DatabendError{
			Number:      ErrCodeUnexpectedHTTPStatus,
			Message:     errMsgUnexpectedHTTPStatus,
			MessageArgs: []interface{}{r.op, ordinal, res.StatusCode},
		}
	}
	if res.Body == nil {
		res.Body = http.NoBody
	}
	res.Body = &cancelOnClose{ReadCloser: res.Body, cancel: cancel}
	return res, nil
}

// cancelOnClose releases the attempt context once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

const maxDrainBytes = 64 << 10

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	if _, err := io.Copy(io.Discard, io.LimitReader(body, maxDrainBytes)); err != nil {
		logger.Debugf("failed to drain response body: %v", err)
	}
	if err := body.Close(); err != nil {
		logger.Debugf("failed to close response body: %v", err)
	}
}
