package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TransferMetrics tracks transfer attempts by outcome and their latency.
type TransferMetrics struct {
	attempts *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewTransferMetrics creates and registers the transfer collectors.
func NewTransferMetrics(reg prometheus.Registerer) *TransferMetrics {
	m := &TransferMetrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ledger",
				Name:      "transfer_attempts_total",
				Help:      "Transfer attempts by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "ledger",
				Name:      "transfer_duration_seconds",
				Help:      "Wall time of transfer attempts.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.attempts, m.duration)
	return m
}

// Observe records one finished transfer attempt.
func (m *TransferMetrics) Observe(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// outcome labels
const (
	OutcomeCommitted    = "committed"
	OutcomeRejected     = "rejected"
	OutcomeConflict     = "conflict"
	OutcomeStoreFailure = "store_failure"
)
