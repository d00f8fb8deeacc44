package usecase

import (
	"context"
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
)

// AccountStore defines data access for accounts.
type AccountStore interface {
	// CreateTx inserts a new account. A clash on the account number yields domain.ErrNumberTaken.
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	// GetByIDsForUpdate returns the accounts with the given ids ordered by id,
	// locking their rows for the rest of tx.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	// ApplyDelta adds delta to the balance when the stored version equals
	// expectedVersion, and bumps the version. It fails with domain.ErrNegativeBalance,
	// domain.ErrVersionConflict or domain.ErrAccountNotFound without changing anything.
	ApplyDelta(ctx context.Context, tx Transaction, id string, delta decimal.Decimal, expectedVersion int64) (*domain.Account, error)
}

// TransactionLedger is the append-only record of committed monetary events.
type TransactionLedger interface {
	// Append stores t within tx and returns it with ID and CommittedAt assigned.
	Append(ctx context.Context, tx Transaction, t *domain.Transaction) (*domain.Transaction, error)
	// Query yields every transaction touching any of accountIDs, newest first.
	// Rows are produced lazily and the sequence can be iterated more than once.
	Query(ctx context.Context, accountIDs []string) iter.Seq2[*domain.Transaction, error]
}

// LedgerTotals is a single consistent snapshot of ledger-wide sums.
type LedgerTotals struct {
	TotalBalance     decimal.Decimal
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	Accounts         int64
	Transactions     int64
}

// AccountFlows is a consistent view of one account's stored balance and ledger sums.
type AccountFlows struct {
	Balance decimal.Decimal
	Credits decimal.Decimal
	Debits  decimal.Decimal
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	Totals(ctx context.Context) (LedgerTotals, error)
	// AccountFlows returns one account's balance together with the sums credited
	// to and debited from it, all read from one snapshot.
	AccountFlows(ctx context.Context, accountID string) (AccountFlows, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// LockManager grants exclusive access to a set of accounts.
type LockManager interface {
	// Acquire takes the locks for ids in ascending order and returns a release
	// func. On failure nothing is held and the error is domain.ErrLockTimeout.
	Acquire(ctx context.Context, ids []string) (release func(), err error)
}

// Retrier re-runs an operation that failed with a retryable contention error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// NumberAllocator hands out candidate external account numbers.
type NumberAllocator interface {
	Allocate() (string, error)
}

// MetricsRecorder receives engine measurements.
type MetricsRecorder interface {
	ObserveOperation(kind domain.TransactionKind, outcome string, duration time.Duration)
	ObserveRetry(kind domain.TransactionKind)
	ObserveLockWait(duration time.Duration)
	IncAccountsCreated(accountType domain.AccountType)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(domain.TransactionKind, string, time.Duration) {}
func (nopRecorder) ObserveRetry(domain.TransactionKind)                            {}
func (nopRecorder) ObserveLockWait(time.Duration)                                  {}
func (nopRecorder) IncAccountsCreated(domain.AccountType)                          {}
