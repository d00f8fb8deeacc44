package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager      TransactionManager
	accounts       AccountStore
	ledger         TransactionLedger
	outbox         OutboxRepository
	idGen          IDGenerator
	numbers        NumberAllocator
	metrics        MetricsRecorder
	logger         zerolog.Logger
	openingBalance decimal.Decimal
}

// AccountDeps groups the collaborators of an AccountUseCase.
type AccountDeps struct {
	TxManager TransactionManager
	Accounts  AccountStore
	Ledger    TransactionLedger
	Outbox    OutboxRepository
	IDGen     IDGenerator
	Numbers   NumberAllocator
	Metrics   MetricsRecorder
	Logger    zerolog.Logger
	// OpeningBalance is credited to new accounts that do not ask for a specific one.
	OpeningBalance decimal.Decimal
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(deps AccountDeps) *AccountUseCase {
	uc := &AccountUseCase{
		txManager:      deps.TxManager,
		accounts:       deps.Accounts,
		ledger:         deps.Ledger,
		outbox:         deps.Outbox,
		idGen:          deps.IDGen,
		numbers:        deps.Numbers,
		metrics:        deps.Metrics,
		logger:         deps.Logger.With().Str("component", "accounts").Logger(),
		openingBalance: deps.OpeningBalance,
	}

	if uc.metrics == nil {
		uc.metrics = nopRecorder{}
	}

	return uc
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	OwnerID string
	Type    domain.AccountType
	// OpeningBalance overrides the configured default when set.
	OpeningBalance *decimal.Decimal
}

// CreateAccount opens an account with a freshly allocated number. A positive
// opening balance is booked as a deposit in the same database transaction.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateOwnerID(input.OwnerID); err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountType(input.Type); err != nil {
		return nil, err
	}

	opening := uc.openingBalance
	if input.OpeningBalance != nil {
		opening = *input.OpeningBalance
	}

	if err := domain.ValidateOpeningBalance(opening); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= MaxNumberAttempts; attempt++ {
		account, err := uc.createOnce(ctx, input, opening)
		if err == nil {
			uc.metrics.IncAccountsCreated(account.Type)
			uc.logger.Info().
				Str("account_id", account.ID).
				Str("number", account.Number).
				Str("type", string(account.Type)).
				Str("opening_balance", opening.StringFixed(domain.MoneyScale)).
				Msg("account created")

			return account, nil
		}

		if !errors.Is(err, domain.ErrNumberTaken) {
			return nil, classify(err)
		}

		uc.logger.Warn().Int("attempt", attempt).Msg("account number collision")
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %w", domain.ErrRetriesExceeded, lastErr)
}

func (uc *AccountUseCase) createOnce(ctx context.Context, input CreateAccountInput, opening decimal.Decimal) (*domain.Account, error) {
	number, err := uc.numbers.Allocate()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		OwnerID:   input.OwnerID,
		Number:    number,
		Type:      input.Type,
		Balance:   opening,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.accounts.CreateTx(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := uc.outbox.Create(ctx, tx, domain.NewAccountCreatedEvent(uc.idGen.Generate(), account)); err != nil {
		return nil, err
	}

	if opening.IsPositive() {
		deposit, err := uc.ledger.Append(ctx, tx, &domain.Transaction{
			ToAccountID: &account.ID,
			Amount:      opening,
			Kind:        domain.TransactionKindDeposit,
			Description: domain.OpeningBalanceDescription,
		})
		if err != nil {
			return nil, err
		}

		if err := uc.outbox.Create(ctx, tx, domain.NewTransactionCommittedEvent(uc.idGen.Generate(), deposit)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID on behalf of its owner.
func (uc *AccountUseCase) GetAccount(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	account, err := uc.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}

	if !account.IsOwnedBy(ownerID) {
		return nil, domain.ErrAccountNotFound
	}

	return account, nil
}

// GetBalance returns the committed balance of an account.
func (uc *AccountUseCase) GetBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	account, err := uc.accounts.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, classify(err)
	}

	return account.Balance, nil
}

// ListAccounts lists the accounts of one owner.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	if err := domain.ValidateOwnerID(ownerID); err != nil {
		return nil, err
	}

	accounts, err := uc.accounts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, classify(err)
	}

	return accounts, nil
}
