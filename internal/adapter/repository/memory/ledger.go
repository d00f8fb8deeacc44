package memory

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

// Ledger implements usecase.TransactionLedger.
type Ledger struct {
	store *Store
}

// NewLedger creates a new Ledger.
func NewLedger(store *Store) *Ledger {
	return &Ledger{store: store}
}

// Append stages t and assigns its id and commit timestamp. Every account the
// record references must exist, as seen from tx.
func (l *Ledger) Append(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) (*domain.Transaction, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	for _, id := range []*string{t.FromAccountID, t.ToAccountID} {
		if id != nil && mtx.view(*id) == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, *id)
		}
	}

	record := t.Clone()
	record.ID, record.CommittedAt = l.store.nextRecord()
	mtx.ledger = append(mtx.ledger, record)

	return record.Clone(), nil
}

// Query yields committed transactions touching any of accountIDs, newest first.
// Each iteration takes a fresh snapshot.
func (l *Ledger) Query(ctx context.Context, accountIDs []string) iter.Seq2[*domain.Transaction, error] {
	return func(yield func(*domain.Transaction, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}

		wanted := make(map[string]bool, len(accountIDs))
		for _, id := range accountIDs {
			wanted[id] = true
		}

		l.store.mu.RLock()
		matches := make([]*domain.Transaction, 0)
		for _, t := range l.store.ledger {
			if (t.FromAccountID != nil && wanted[*t.FromAccountID]) || (t.ToAccountID != nil && wanted[*t.ToAccountID]) {
				matches = append(matches, t)
			}
		}
		l.store.mu.RUnlock()

		slices.SortFunc(matches, func(a, b *domain.Transaction) int {
			if c := b.CommittedAt.Compare(a.CommittedAt); c != 0 {
				return c
			}
			return cmp.Compare(b.ID, a.ID)
		})

		for _, t := range matches {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			if !yield(t.Clone(), nil) {
				return
			}
		}
	}
}
