package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankcore/internal/adapter/repository/memory"
	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/idgen"
	"github.com/iho/bankcore/internal/infrastructure/lock"
	"github.com/iho/bankcore/internal/infrastructure/retry"
	"github.com/iho/bankcore/internal/usecase"
)

// bank wires every use case to one in-memory store.
type bank struct {
	store      *memory.Store
	txm        *memory.TxManager
	accounts   *memory.AccountRepository
	ledger     *memory.Ledger
	outbox     *memory.OutboxRepository
	ledgerRepo *memory.LedgerRepository
	locks      *lock.Manager

	accountUC *usecase.AccountUseCase
	banking   *usecase.BankingUseCase
	history   *usecase.HistoryUseCase
	ledgerUC  *usecase.LedgerUseCase
}

type bankOption func(*usecase.BankingDeps)

func newBank(t *testing.T, opts ...bankOption) *bank {
	t.Helper()

	store := memory.NewStore()
	b := &bank{
		store:      store,
		txm:        memory.NewTxManager(store),
		accounts:   memory.NewAccountRepository(store),
		ledger:     memory.NewLedger(store),
		outbox:     memory.NewOutboxRepository(store),
		ledgerRepo: memory.NewLedgerRepository(store),
		locks:      lock.NewManager(2 * time.Second),
	}

	ids := idgen.NewULIDGenerator()

	b.accountUC = usecase.NewAccountUseCase(usecase.AccountDeps{
		TxManager: b.txm,
		Accounts:  b.accounts,
		Ledger:    b.ledger,
		Outbox:    b.outbox,
		IDGen:     ids,
		Numbers:   idgen.NewNumberAllocator(),
		Logger:    zerolog.Nop(),
	})

	deps := usecase.BankingDeps{
		TxManager: b.txm,
		Accounts:  b.accounts,
		Ledger:    b.ledger,
		Outbox:    b.outbox,
		Locks:     b.locks,
		Retrier: retry.NewRetrier(retry.Config{
			MaxRetries:      5,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			MaxElapsedTime:  5 * time.Second,
		}, zerolog.Nop()),
		IDGen:  ids,
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	b.banking = usecase.NewBankingUseCase(deps)

	b.history = usecase.NewHistoryUseCase(b.accounts, b.ledger)
	b.ledgerUC = usecase.NewLedgerUseCase(b.ledgerRepo)

	return b
}

func (b *bank) open(t *testing.T, owner, balance string) *domain.Account {
	t.Helper()

	opening := decimal.RequireFromString(balance)
	account, err := b.accountUC.CreateAccount(context.Background(), usecase.CreateAccountInput{
		OwnerID:        owner,
		Type:           domain.AccountTypeChecking,
		OpeningBalance: &opening,
	})
	require.NoError(t, err)

	return account
}

func (b *bank) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()

	balance, err := b.accountUC.GetBalance(context.Background(), id)
	require.NoError(t, err)

	return balance
}

func (b *bank) recordCount(t *testing.T) int64 {
	t.Helper()

	totals, err := b.ledgerRepo.Totals(context.Background())
	require.NoError(t, err)

	return totals.Transactions
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
