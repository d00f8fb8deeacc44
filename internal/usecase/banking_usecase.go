package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
)

// BankingUseCase executes deposits, withdrawals and transfers atomically.
type BankingUseCase struct {
	txManager TransactionManager
	accounts  AccountStore
	ledger    TransactionLedger
	outbox    OutboxRepository
	locks     LockManager
	retrier   Retrier
	idGen     IDGenerator
	metrics   MetricsRecorder
	txTimeout time.Duration
	logger    zerolog.Logger
}

// BankingDeps groups the collaborators of a BankingUseCase.
// Retrier and Metrics are optional. TxTimeout defaults to DefaultTransactionTimeout.
type BankingDeps struct {
	TxManager TransactionManager
	Accounts  AccountStore
	Ledger    TransactionLedger
	Outbox    OutboxRepository
	Locks     LockManager
	Retrier   Retrier
	IDGen     IDGenerator
	Metrics   MetricsRecorder
	TxTimeout time.Duration
	Logger    zerolog.Logger
}

// NewBankingUseCase creates a new BankingUseCase.
func NewBankingUseCase(deps BankingDeps) *BankingUseCase {
	uc := &BankingUseCase{
		txManager: deps.TxManager,
		accounts:  deps.Accounts,
		ledger:    deps.Ledger,
		outbox:    deps.Outbox,
		locks:     deps.Locks,
		retrier:   deps.Retrier,
		idGen:     deps.IDGen,
		metrics:   deps.Metrics,
		txTimeout: deps.TxTimeout,
		logger:    deps.Logger.With().Str("component", "banking").Logger(),
	}

	if uc.retrier == nil {
		uc.retrier = singleAttempt{}
	}

	if uc.metrics == nil {
		uc.metrics = nopRecorder{}
	}

	if uc.txTimeout <= 0 {
		uc.txTimeout = DefaultTransactionTimeout
	}

	return uc
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	CallerID    string
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	CallerID    string
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

// TransferInput represents input for a transfer between two account numbers.
// The source must belong to the caller, the destination may belong to anyone.
type TransferInput struct {
	CallerID          string
	FromAccountNumber string
	ToAccountNumber   string
	Amount            decimal.Decimal
	Description       string
}

// posting is one balance change of an operation.
type posting struct {
	accountID string
	delta     decimal.Decimal
}

// Deposit credits an account owned by the caller.
func (uc *BankingUseCase) Deposit(ctx context.Context, input DepositInput) (*domain.Transaction, error) {
	return uc.run(ctx, domain.TransactionKindDeposit, func() (*domain.Transaction, error) {
		if err := validateMovement(input.CallerID, input.Amount, input.Description); err != nil {
			return nil, err
		}

		account, err := uc.ownedAccount(ctx, input.CallerID, input.AccountID)
		if err != nil {
			return nil, err
		}

		record := &domain.Transaction{
			ToAccountID: &account.ID,
			Amount:      input.Amount,
			Kind:        domain.TransactionKindDeposit,
			Description: describe(input.Description, domain.TransactionKindDeposit, "", account.Number),
		}

		return uc.commit(ctx, record, []posting{{accountID: account.ID, delta: input.Amount}})
	})
}

// Withdraw debits an account owned by the caller.
func (uc *BankingUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.Transaction, error) {
	return uc.run(ctx, domain.TransactionKindWithdrawal, func() (*domain.Transaction, error) {
		if err := validateMovement(input.CallerID, input.Amount, input.Description); err != nil {
			return nil, err
		}

		account, err := uc.ownedAccount(ctx, input.CallerID, input.AccountID)
		if err != nil {
			return nil, err
		}

		record := &domain.Transaction{
			FromAccountID: &account.ID,
			Amount:        input.Amount,
			Kind:          domain.TransactionKindWithdrawal,
			Description:   describe(input.Description, domain.TransactionKindWithdrawal, account.Number, ""),
		}

		return uc.commit(ctx, record, []posting{{accountID: account.ID, delta: input.Amount.Neg()}})
	})
}

// Transfer moves money from an account owned by the caller to any other account.
func (uc *BankingUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	return uc.run(ctx, domain.TransactionKindTransfer, func() (*domain.Transaction, error) {
		if err := validateMovement(input.CallerID, input.Amount, input.Description); err != nil {
			return nil, err
		}

		if err := domain.ValidateAccountNumber(input.FromAccountNumber); err != nil {
			return nil, err
		}

		if err := domain.ValidateAccountNumber(input.ToAccountNumber); err != nil {
			return nil, err
		}

		from, err := uc.accounts.GetByNumber(ctx, input.FromAccountNumber)
		if err != nil {
			return nil, err
		}

		if !from.IsOwnedBy(input.CallerID) {
			return nil, domain.ErrAccountNotFound
		}

		to, err := uc.accounts.GetByNumber(ctx, input.ToAccountNumber)
		if err != nil {
			return nil, err
		}

		if from.ID == to.ID {
			return nil, domain.ErrSameAccount
		}

		record := &domain.Transaction{
			FromAccountID: &from.ID,
			ToAccountID:   &to.ID,
			Amount:        input.Amount,
			Kind:          domain.TransactionKindTransfer,
			Description:   describe(input.Description, domain.TransactionKindTransfer, from.Number, to.Number),
		}

		// Debit first so an overdraft aborts before anything is credited.
		return uc.commit(ctx, record, []posting{
			{accountID: from.ID, delta: input.Amount.Neg()},
			{accountID: to.ID, delta: input.Amount},
		})
	})
}

// run executes one operation attempt under the retrier and records the outcome.
func (uc *BankingUseCase) run(
	ctx context.Context,
	kind domain.TransactionKind,
	attempt func() (*domain.Transaction, error),
) (*domain.Transaction, error) {
	start := time.Now()

	var (
		result   *domain.Transaction
		attempts int
	)

	err := uc.retrier.Retry(ctx, func() error {
		attempts++
		if attempts > 1 {
			uc.metrics.ObserveRetry(kind)
			uc.logger.Warn().Str("kind", string(kind)).Int("attempt", attempts).Msg("retrying after contention")
		}

		t, err := attempt()
		if err != nil {
			return err
		}

		result = t

		return nil
	})
	err = classify(err)

	outcome := outcomeOf(err)
	uc.metrics.ObserveOperation(kind, outcome, time.Since(start))

	if err != nil {
		event := uc.logger.Debug()
		switch outcome {
		case OutcomeConflict:
			event = uc.logger.Warn()
		case OutcomeFailed:
			event = uc.logger.Error()
		}

		event.Err(err).Str("kind", string(kind)).Int("attempts", attempts).Msg("operation aborted")

		return nil, err
	}

	uc.logger.Info().
		Int64("transaction_id", result.ID).
		Str("kind", string(kind)).
		Str("amount", result.Amount.StringFixed(domain.MoneyScale)).
		Int("attempts", attempts).
		Msg("transaction committed")

	return result, nil
}

// commit applies postings and appends record inside one database transaction
// while holding the locks of every touched account.
func (uc *BankingUseCase) commit(ctx context.Context, record *domain.Transaction, postings []posting) (*domain.Transaction, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(postings))
	for _, p := range postings {
		ids = append(ids, p.accountID)
	}
	sort.Strings(ids)

	waitStart := time.Now()
	release, err := uc.locks.Acquire(ctx, ids)
	uc.metrics.ObserveLockWait(time.Since(waitStart))
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	locked, err := uc.accounts.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	if len(locked) != len(ids) {
		return nil, domain.ErrAccountNotFound
	}

	byID := make(map[string]*domain.Account, len(locked))
	for _, account := range locked {
		byID[account.ID] = account
	}

	for _, p := range postings {
		if _, err := byID[p.accountID].ApplyDelta(p.delta); err != nil {
			return nil, err
		}
	}

	for _, p := range postings {
		if _, err := uc.accounts.ApplyDelta(ctx, tx, p.accountID, p.delta, byID[p.accountID].Version); err != nil {
			return nil, err
		}
	}

	committed, err := uc.ledger.Append(ctx, tx, record)
	if err != nil {
		return nil, err
	}

	if err := uc.outbox.Create(ctx, tx, domain.NewTransactionCommittedEvent(uc.idGen.Generate(), committed)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return committed, nil
}

func (uc *BankingUseCase) ownedAccount(ctx context.Context, callerID, accountID string) (*domain.Account, error) {
	account, err := uc.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if !account.IsOwnedBy(callerID) {
		return nil, domain.ErrAccountNotFound
	}

	return account, nil
}

func validateMovement(callerID string, amount decimal.Decimal, description string) error {
	if err := domain.ValidateOwnerID(callerID); err != nil {
		return err
	}

	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}

	return domain.ValidateDescription(description)
}

func describe(description string, kind domain.TransactionKind, fromNumber, toNumber string) string {
	if strings.TrimSpace(description) == "" {
		return domain.DefaultDescription(kind, fromNumber, toNumber)
	}

	return description
}

// classify maps an engine error onto the domain taxonomy.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case domain.Kind(err) != nil:
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", domain.ErrContention, err)
	default:
		return domain.Persistence(err)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case domain.IsBusiness(err):
		return OutcomeRejected
	case errors.Is(err, domain.ErrContention):
		return OutcomeConflict
	default:
		return OutcomeFailed
	}
}

type singleAttempt struct{}

func (singleAttempt) Retry(_ context.Context, operation func() error) error {
	return operation()
}
