package godatabend

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSucceeded = "succeeded"
	outcomeExhausted = "exhausted"
	outcomeCancelled = "cancelled"
	outcomeFailed    = "failed"

	attemptOK               = "ok"
	attemptTransportError   = "transport_error"
	attemptUnexpectedStatus = "unexpected_status"
)

// TransferMetrics collects Prometheus metrics of stage transfers. A nil
// *TransferMetrics records nothing.
type TransferMetrics struct {
	attempts  *prometheus.CounterVec
	transfers *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewTransferMetrics creates the transfer metrics and registers them on reg.
func NewTransferMetrics(reg prometheus.Registerer) (*TransferMetrics, error) {
	m := &TransferMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "databend_stage_transfer_attempts_total",
			Help: "Number of HTTP attempts made by stage transfers",
		}, []string{"op", "result"}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "databend_stage_transfers_total",
			Help: "Number of finished stage transfers",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "databend_stage_transfer_duration_seconds",
			Help:    "Duration of stage transfers including backoff waits",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{m.attempts, m.transfers, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *TransferMetrics) observeAttempt(op string, a transferAttempt) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(op, attemptResult(a.cause)).Inc()
}

func (m *TransferMetrics) observeTransfer(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(op, transferOutcome(err)).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func attemptResult(cause error) string {
	switch {
	case cause == nil:
		return attemptOK
	case errors.Is(cause, ErrUnexpectedHTTPStatus):
		return attemptUnexpectedStatus
	}
	return attemptTransportError
}

func transferOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeSucceeded
	case errors.Is(err, ErrRetryExhausted):
		return outcomeExhausted
	case errors.Is(err, ErrTransferCancelled):
		return outcomeCancelled
	}
	return outcomeFailed
}
