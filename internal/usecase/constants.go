package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds one storage transaction, from Begin to Commit.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// ReconciliationPageSize is how many accounts are reconciled per page.
	ReconciliationPageSize = 500

	// MaxNumberAttempts bounds how many account numbers are tried before giving up.
	MaxNumberAttempts = 5
)

// Operation outcomes reported to the MetricsRecorder.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeFailed   = "failed"
)
