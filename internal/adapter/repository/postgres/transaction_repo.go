package postgres

import (
	"context"
	"iter"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/postgres/generated"
	"github.com/iho/bankcore/internal/usecase"
)

// Kept out of sqlc: a :many query would buffer the whole history before returning.
const streamTransactionsByAccounts = `
SELECT id, from_account_id, to_account_id, amount, kind, description, committed_at FROM transactions
WHERE from_account_id = ANY($1::text[]) OR to_account_id = ANY($1::text[])
ORDER BY committed_at DESC, id DESC
`

// TransactionRepository implements usecase.TransactionLedger.
type TransactionRepository struct {
	db generated.DBTX
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return newTransactionRepository(pool)
}

func newTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Append inserts t within tx. The database assigns the id and commit timestamp.
func (r *TransactionRepository) Append(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) (*domain.Transaction, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.AppendTransaction(ctx, generated.AppendTransactionParams{
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        decimalToNumeric(t.Amount),
		Kind:          string(t.Kind),
		Description:   t.Description,
	})
	if err != nil {
		return nil, err
	}

	return rowToTransaction(row), nil
}

// Query streams transactions touching any of accountIDs, newest first. Every
// range over the result runs the query again.
func (r *TransactionRepository) Query(ctx context.Context, accountIDs []string) iter.Seq2[*domain.Transaction, error] {
	return func(yield func(*domain.Transaction, error) bool) {
		rows, err := r.db.Query(ctx, streamTransactionsByAccounts, accountIDs)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var row generated.Transaction
			if err := rows.Scan(
				&row.ID,
				&row.FromAccountID,
				&row.ToAccountID,
				&row.Amount,
				&row.Kind,
				&row.Description,
				&row.CommittedAt,
			); err != nil {
				yield(nil, err)
				return
			}

			if !yield(rowToTransaction(row), nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:            row.ID,
		FromAccountID: row.FromAccountID,
		ToAccountID:   row.ToAccountID,
		Amount:        numericToDecimal(row.Amount),
		Kind:          domain.TransactionKind(row.Kind),
		Description:   row.Description,
		CommittedAt:   row.CommittedAt.Time,
	}
}
