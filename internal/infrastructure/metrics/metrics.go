package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

const namespace = "bankcore"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Engine metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	Retries           *prometheus.CounterVec
	Contention        *prometheus.CounterVec
	LockWait          prometheus.Histogram

	// Account metrics
	AccountsCreated *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

var _ usecase.MetricsRecorder = (*Metrics)(nil)

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Monetary operations by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of monetary operations including retries",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		Retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retries_total",
				Help:      "Operation attempts repeated after a transient conflict",
			},
			[]string{"kind"},
		),
		Contention: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contention_total",
				Help:      "Operations that gave up on contention",
			},
			[]string{"kind"},
		),
		LockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for account locks",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}),

		AccountsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "accounts_created_total",
				Help:      "Accounts opened by type",
			},
			[]string{"type"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RateLimitHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
	}

	reg.MustRegister(
		m.Operations,
		m.OperationDuration,
		m.Retries,
		m.Contention,
		m.LockWait,
		m.AccountsCreated,
		m.HTTPRequests,
		m.HTTPDuration,
		m.RateLimitHits,
	)

	return m
}

// ObserveOperation records the outcome and duration of one operation.
func (m *Metrics) ObserveOperation(kind domain.TransactionKind, outcome string, d time.Duration) {
	label := string(kind)
	m.Operations.WithLabelValues(label, outcome).Inc()
	m.OperationDuration.WithLabelValues(label).Observe(d.Seconds())

	if outcome == usecase.OutcomeConflict {
		m.Contention.WithLabelValues(label).Inc()
	}
}

// ObserveRetry counts one repeated attempt.
func (m *Metrics) ObserveRetry(kind domain.TransactionKind) {
	m.Retries.WithLabelValues(string(kind)).Inc()
}

// ObserveLockWait records how long an operation waited for its locks.
func (m *Metrics) ObserveLockWait(d time.Duration) {
	m.LockWait.Observe(d.Seconds())
}

// IncAccountsCreated counts a newly opened account.
func (m *Metrics) IncAccountsCreated(accountType domain.AccountType) {
	m.AccountsCreated.WithLabelValues(string(accountType)).Inc()
}
