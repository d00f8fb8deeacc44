package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/postgres/generated"
	"github.com/iho/bankcore/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepository(pool)
}

func newLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// Totals reads all ledger-wide sums in a single statement, so they share one snapshot.
func (r *LedgerRepository) Totals(ctx context.Context) (usecase.LedgerTotals, error) {
	row, err := r.queries.GetLedgerTotals(ctx)
	if err != nil {
		return usecase.LedgerTotals{}, err
	}

	return usecase.LedgerTotals{
		TotalBalance:     numericToDecimal(row.TotalBalance),
		TotalDeposits:    numericToDecimal(row.TotalDeposits),
		TotalWithdrawals: numericToDecimal(row.TotalWithdrawals),
		Accounts:         row.AccountCount,
		Transactions:     row.TransactionCount,
	}, nil
}

// AccountFlows reads the balance of accountID and its ledger sums in a single statement.
func (r *LedgerRepository) AccountFlows(ctx context.Context, accountID string) (usecase.AccountFlows, error) {
	row, err := r.queries.GetAccountFlows(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return usecase.AccountFlows{}, domain.ErrAccountNotFound
		}

		return usecase.AccountFlows{}, err
	}

	return usecase.AccountFlows{
		Balance: numericToDecimal(row.Balance),
		Credits: numericToDecimal(row.Credits),
		Debits:  numericToDecimal(row.Debits),
	}, nil
}
