package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Totals sums balances and ledger flows under one read lock.
func (r *LedgerRepository) Totals(ctx context.Context) (usecase.LedgerTotals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	totals := usecase.LedgerTotals{
		TotalBalance:     decimal.Zero,
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
		Accounts:         int64(len(r.store.accounts)),
		Transactions:     int64(len(r.store.ledger)),
	}

	for _, a := range r.store.accounts {
		totals.TotalBalance = totals.TotalBalance.Add(a.Balance)
	}

	for _, t := range r.store.ledger {
		switch t.Kind {
		case domain.TransactionKindDeposit:
			totals.TotalDeposits = totals.TotalDeposits.Add(t.Amount)
		case domain.TransactionKindWithdrawal:
			totals.TotalWithdrawals = totals.TotalWithdrawals.Add(t.Amount)
		}
	}

	return totals, nil
}

// AccountFlows reads the balance of accountID and sums its ledger flows under
// one read lock.
func (r *LedgerRepository) AccountFlows(ctx context.Context, accountID string) (usecase.AccountFlows, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account, ok := r.store.accounts[accountID]
	if !ok {
		return usecase.AccountFlows{}, domain.ErrAccountNotFound
	}

	flows := usecase.AccountFlows{
		Balance: account.Balance,
		Credits: decimal.Zero,
		Debits:  decimal.Zero,
	}
	for _, t := range r.store.ledger {
		if t.ToAccountID != nil && *t.ToAccountID == accountID {
			flows.Credits = flows.Credits.Add(t.Amount)
		}
		if t.FromAccountID != nil && *t.FromAccountID == accountID {
			flows.Debits = flows.Debits.Add(t.Amount)
		}
	}

	return flows, nil
}
