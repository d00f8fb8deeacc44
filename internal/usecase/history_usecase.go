package usecase

import (
	"context"
	"iter"

	"github.com/iho/bankcore/internal/domain"
)

// HistoryEntry is a ledger record seen from one owner.
type HistoryEntry struct {
	Transaction *domain.Transaction
	Direction   domain.Direction
	// FromNumber and ToNumber are the account numbers of both sides; empty for the
	// side a deposit or withdrawal does not have.
	FromNumber string
	ToNumber   string
}

// HistoryUseCase answers transaction history queries.
type HistoryUseCase struct {
	accounts AccountStore
	ledger   TransactionLedger
}

// NewHistoryUseCase creates a new HistoryUseCase.
func NewHistoryUseCase(accounts AccountStore, ledger TransactionLedger) *HistoryUseCase {
	return &HistoryUseCase{
		accounts: accounts,
		ledger:   ledger,
	}
}

// Entries yields the history of every account owned by ownerID, newest first.
// The ledger is read lazily while the sequence is ranged over.
func (uc *HistoryUseCase) Entries(ctx context.Context, ownerID string) iter.Seq2[HistoryEntry, error] {
	return func(yield func(HistoryEntry, error) bool) {
		if err := domain.ValidateOwnerID(ownerID); err != nil {
			yield(HistoryEntry{}, err)
			return
		}

		owned, err := uc.accounts.ListByOwner(ctx, ownerID)
		if err != nil {
			yield(HistoryEntry{}, classify(err))
			return
		}

		if len(owned) == 0 {
			return
		}

		ids := make([]string, 0, len(owned))
		ownedSet := make(map[string]bool, len(owned))
		numbers := make(map[string]string, len(owned))
		for _, account := range owned {
			ids = append(ids, account.ID)
			ownedSet[account.ID] = true
			numbers[account.ID] = account.Number
		}

		lookup := func(id *string) (string, error) {
			if id == nil {
				return "", nil
			}

			if number, ok := numbers[*id]; ok {
				return number, nil
			}

			account, err := uc.accounts.GetByID(ctx, *id)
			if err != nil {
				return "", err
			}

			numbers[*id] = account.Number

			return account.Number, nil
		}

		for t, err := range uc.ledger.Query(ctx, ids) {
			if err != nil {
				yield(HistoryEntry{}, classify(err))
				return
			}

			fromNumber, err := lookup(t.FromAccountID)
			if err != nil {
				yield(HistoryEntry{}, classify(err))
				return
			}

			toNumber, err := lookup(t.ToAccountID)
			if err != nil {
				yield(HistoryEntry{}, classify(err))
				return
			}

			entry := HistoryEntry{
				Transaction: t,
				Direction:   domain.DirectionFor(t, ownedSet),
				FromNumber:  fromNumber,
				ToNumber:    toNumber,
			}

			if !yield(entry, nil) {
				return
			}
		}
	}
}

// HistoryFor returns the full history of every account owned by ownerID, newest first.
func (uc *HistoryUseCase) HistoryFor(ctx context.Context, ownerID string) ([]HistoryEntry, error) {
	entries := make([]HistoryEntry, 0)

	for entry, err := range uc.Entries(ctx, ownerID) {
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
