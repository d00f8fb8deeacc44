package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/adapter/repository/postgres"
	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/idgen"
	"github.com/iho/bankcore/internal/infrastructure/lock"
	infrapostgres "github.com/iho/bankcore/internal/infrastructure/postgres"
	"github.com/iho/bankcore/internal/infrastructure/postgres/generated"
	"github.com/iho/bankcore/internal/infrastructure/retry"
	"github.com/iho/bankcore/internal/usecase"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB connects to DATABASE_URL and migrates it. The test is skipped when
// the variable is unset or -short is given.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := infrapostgres.RunMigrations(dbURL, migrationsPath()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapostgres.NewPool(ctx, dbURL, 20, 2)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
	t.Cleanup(db.Cleanup)

	db.TruncateAll(ctx)

	return db
}

func migrationsPath() string {
	for _, path := range []string{"migrations", "../migrations", "../../migrations"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return "migrations"
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `TRUNCATE TABLE outbox_events, transactions, accounts RESTART IDENTITY CASCADE`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestAccount inserts an account with the given balance directly, with
// no ledger record behind it.
func (db *TestDB) CreateTestAccount(ctx context.Context, ownerID, number string, balance decimal.Decimal) *domain.Account {
	db.t.Helper()

	now := time.Now().UTC()
	id := idgen.NewULIDGenerator().Generate()

	var numericBalance pgtype.Numeric
	_ = numericBalance.Scan(balance.String())

	ts := pgtype.Timestamptz{Time: now, Valid: true}

	_, err := db.Queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:          id,
		OwnerID:     ownerID,
		Number:      number,
		AccountType: string(domain.AccountTypeChecking),
		Balance:     numericBalance,
		Version:     0,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	})
	if err != nil {
		db.t.Fatalf("failed to create test account: %v", err)
	}

	return &domain.Account{
		ID:        id,
		OwnerID:   ownerID,
		Number:    number,
		Type:      domain.AccountTypeChecking,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Bank is the full set of use cases running against one TestDB.
type Bank struct {
	TxManager        *postgres.TxManager
	Accounts         *postgres.AccountRepository
	Ledger           *postgres.TransactionRepository
	Outbox           *postgres.OutboxRepository
	LedgerRepo       *postgres.LedgerRepository
	AccountUC        *usecase.AccountUseCase
	BankingUC        *usecase.BankingUseCase
	HistoryUC        *usecase.HistoryUseCase
	LedgerUC         *usecase.LedgerUseCase
	ReconciliationUC *usecase.ReconciliationUseCase
}

// NewBank wires the Postgres repositories into the use cases.
func (db *TestDB) NewBank() *Bank {
	txManager := postgres.NewTxManager(db.Pool)
	accounts := postgres.NewAccountRepository(db.Pool)
	ledger := postgres.NewTransactionRepository(db.Pool)
	outbox := postgres.NewOutboxRepository(db.Pool)
	ledgerRepo := postgres.NewLedgerRepository(db.Pool)
	ids := idgen.NewULIDGenerator()

	return &Bank{
		TxManager:  txManager,
		Accounts:   accounts,
		Ledger:     ledger,
		Outbox:     outbox,
		LedgerRepo: ledgerRepo,
		AccountUC: usecase.NewAccountUseCase(usecase.AccountDeps{
			TxManager: txManager,
			Accounts:  accounts,
			Ledger:    ledger,
			Outbox:    outbox,
			IDGen:     ids,
			Numbers:   idgen.NewNumberAllocator(),
			Logger:    zerolog.Nop(),
		}),
		BankingUC: usecase.NewBankingUseCase(usecase.BankingDeps{
			TxManager: txManager,
			Accounts:  accounts,
			Ledger:    ledger,
			Outbox:    outbox,
			Locks:     lock.NewManager(5 * time.Second),
			Retrier:   retry.NewRetrier(retry.DefaultConfig(), zerolog.Nop()),
			IDGen:     ids,
			Logger:    zerolog.Nop(),
		}),
		HistoryUC:        usecase.NewHistoryUseCase(accounts, ledger),
		LedgerUC:         usecase.NewLedgerUseCase(ledgerRepo),
		ReconciliationUC: usecase.NewReconciliationUseCase(accounts, ledgerRepo),
	}
}

// OpenAccount creates an account through the use case, booking balance as its
// opening deposit.
func (b *Bank) OpenAccount(t *testing.T, ownerID string, balance decimal.Decimal) *domain.Account {
	t.Helper()

	account, err := b.AccountUC.CreateAccount(context.Background(), usecase.CreateAccountInput{
		OwnerID:        ownerID,
		Type:           domain.AccountTypeChecking,
		OpeningBalance: &balance,
	})
	if err != nil {
		t.Fatalf("failed to open account: %v", err)
	}

	return account
}
