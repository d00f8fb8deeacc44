package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

var accountColumns = []string{"id", "owner_id", "number", "account_type", "balance", "version", "created_at", "updated_at"}

func beginTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	pool.ExpectBegin()

	tx, err := newTxManagerWithPool(pool).Begin(context.Background())
	require.NoError(t, err)

	return tx
}

func TestAccountRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("SELECT (.+) FROM accounts WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := newAccountRepository(pool).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assertExpectations(t, pool)
}

func TestAccountRepositoryGetByNumberNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("SELECT (.+) FROM accounts WHERE number").
		WithArgs("0000000001").
		WillReturnError(pgx.ErrNoRows)

	_, err := newAccountRepository(pool).GetByNumber(context.Background(), "0000000001")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assertExpectations(t, pool)
}

func TestAccountRepositoryGetByIDScansRow(t *testing.T) {
	pool := newMockPool(t)
	now := time.Now().UTC()
	pool.ExpectQuery("SELECT (.+) FROM accounts WHERE id").
		WithArgs("acc-1").
		WillReturnRows(pgxmock.NewRows(accountColumns).
			AddRow("acc-1", "owner-1", "1234567890", "Savings", "25.50", int64(4), now, now))

	account, err := newAccountRepository(pool).GetByID(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", account.Number)
	assert.Equal(t, domain.AccountTypeSavings, account.Type)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, int64(4), account.Version)
	assertExpectations(t, pool)
}

func TestAccountRepositoryCreateNumberTaken(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	pool.ExpectQuery("INSERT INTO accounts").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: accountsNumberKey})

	now := time.Now().UTC()
	err := newAccountRepository(pool).CreateTx(context.Background(), tx, &domain.Account{
		ID:        "acc-1",
		OwnerID:   "owner-1",
		Number:    "1234567890",
		Type:      domain.AccountTypeChecking,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	})
	assert.ErrorIs(t, err, domain.ErrNumberTaken)
	assertExpectations(t, pool)
}

func TestAccountRepositoryCreateOtherUniqueViolation(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	pool.ExpectQuery("INSERT INTO accounts").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "accounts_pkey"})

	err := newAccountRepository(pool).CreateTx(context.Background(), tx, &domain.Account{ID: "acc-1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNumberTaken)
	assertExpectations(t, pool)
}

func TestAccountRepositoryApplyDeltaFailures(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		current *pgxmock.Rows
		lookup  error
		want    error
	}{
		{
			name:   "account gone",
			lookup: pgx.ErrNoRows,
			want:   domain.ErrAccountNotFound,
		},
		{
			name: "version moved on",
			current: pgxmock.NewRows(accountColumns).
				AddRow("acc-1", "owner-1", "1234567890", "Savings", "10.00", int64(3), now, now),
			want: domain.ErrVersionConflict,
		},
		{
			name: "balance too low",
			current: pgxmock.NewRows(accountColumns).
				AddRow("acc-1", "owner-1", "1234567890", "Savings", "10.00", int64(2), now, now),
			want: domain.ErrNegativeBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newMockPool(t)
			tx := beginTx(t, pool)
			pool.ExpectQuery("UPDATE accounts").
				WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "acc-1", int64(2)).
				WillReturnError(pgx.ErrNoRows)

			lookup := pool.ExpectQuery("SELECT (.+) FROM accounts WHERE id").WithArgs("acc-1")
			if tt.lookup != nil {
				lookup.WillReturnError(tt.lookup)
			} else {
				lookup.WillReturnRows(tt.current)
			}

			_, err := newAccountRepository(pool).ApplyDelta(
				context.Background(), tx, "acc-1", decimal.RequireFromString("-20.00"), 2,
			)
			assert.ErrorIs(t, err, tt.want)
			assertExpectations(t, pool)
		})
	}
}

func TestAccountRepositoryApplyDeltaNumericOverflow(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)
	pool.ExpectQuery("UPDATE accounts").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "acc-1", int64(1)).
		WillReturnError(&pgconn.PgError{Code: pgErrNumericOverflow})

	_, err := newAccountRepository(pool).ApplyDelta(
		context.Background(), tx, "acc-1", decimal.RequireFromString("0.01"), 1,
	)
	assert.ErrorIs(t, err, domain.ErrBalanceTooLarge)
	assertExpectations(t, pool)
}

func TestAccountRepositoryRejectsForeignTransaction(t *testing.T) {
	pool := newMockPool(t)

	_, err := newAccountRepository(pool).GetByIDsForUpdate(context.Background(), foreignTx{}, []string{"a"})
	require.Error(t, err)
}

func TestTransactionRepositoryAppendValidates(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	_, err := newTransactionRepository(pool).Append(context.Background(), tx, &domain.Transaction{
		Amount: decimal.RequireFromString("5.00"),
		Kind:   domain.TransactionKindDeposit,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assertExpectations(t, pool)
}

func TestTransactionRepositoryQueryStreamsRows(t *testing.T) {
	pool := newMockPool(t)
	from, to := "acc-1", "acc-2"
	now := time.Now().UTC()
	pool.ExpectQuery("SELECT (.+) FROM transactions").
		WithArgs([]string{"acc-1"}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "from_account_id", "to_account_id", "amount", "kind", "description", "committed_at"}).
			AddRow(int64(2), &from, &to, "7.00", "TRANSFER", "rent", now).
			AddRow(int64(1), (*string)(nil), &from, "10.00", "DEPOSIT", "Deposit", now.Add(-time.Second)))

	var ids []int64
	for record, err := range newTransactionRepository(pool).Query(context.Background(), []string{"acc-1"}) {
		require.NoError(t, err)
		ids = append(ids, record.ID)
	}

	assert.Equal(t, []int64{2, 1}, ids)
	assertExpectations(t, pool)
}

func TestTransactionRepositoryQueryError(t *testing.T) {
	pool := newMockPool(t)
	boom := errors.New("connection reset")
	pool.ExpectQuery("SELECT (.+) FROM transactions").
		WithArgs([]string{"acc-1"}).
		WillReturnError(boom)

	var got error
	for _, err := range newTransactionRepository(pool).Query(context.Background(), []string{"acc-1"}) {
		got = err
	}

	assert.ErrorIs(t, got, boom)
	assertExpectations(t, pool)
}

func TestLedgerRepositoryTotalsError(t *testing.T) {
	pool := newMockPool(t)
	boom := errors.New("timeout")
	pool.ExpectQuery("SELECT").WillReturnError(boom)

	_, err := newLedgerRepository(pool).Totals(context.Background())
	assert.ErrorIs(t, err, boom)
	assertExpectations(t, pool)
}

func TestLedgerRepositoryAccountFlows(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM accounts a").
		WithArgs("acc-1").
		WillReturnRows(pgxmock.NewRows([]string{"balance", "credits", "debits"}).
			AddRow("12.50", "20.00", "7.50"))
	pool.ExpectQuery("FROM accounts a").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := newLedgerRepository(pool)

	flows, err := repo.AccountFlows(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, flows.Balance.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, flows.Credits.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, flows.Debits.Equal(decimal.RequireFromString("7.50")))

	_, err = repo.AccountFlows(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assertExpectations(t, pool)
}

func TestOutboxRepositoryMarkPublished(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectExec("UPDATE outbox_events").
		WithArgs("evt-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := newOutboxRepository(pool).MarkPublished(context.Background(), "evt-1", time.Now().UTC())
	require.NoError(t, err)
	assertExpectations(t, pool)
}

func TestNullOutboxRepositoryDiscards(t *testing.T) {
	ctx := context.Background()
	repo := NewNullOutboxRepository()

	require.NoError(t, repo.Create(ctx, foreignTx{}, &domain.OutboxEvent{ID: "evt-1"}))

	events, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.NoError(t, repo.MarkPublished(ctx, "evt-1", time.Now()))
}

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0.00", "0.01", "1234567.89", "-42.10"} {
		d := decimal.RequireFromString(s)
		assert.True(t, numericToDecimal(decimalToNumeric(d)).Equal(d), s)
	}

	assert.True(t, numericToDecimal(decimalToNumeric(decimal.Zero)).IsZero())
}

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }
