package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

// AccountRepository implements usecase.AccountStore.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// CreateTx stages a new account.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	r.store.mu.RLock()
	_, taken := r.store.numbers[account.Number]
	r.store.mu.RUnlock()

	if taken {
		return domain.ErrNumberTaken
	}

	for _, a := range t.created {
		if a.Number == account.Number {
			return domain.ErrNumberTaken
		}
	}

	t.created[account.ID] = account.Clone()

	return nil
}

// GetByID retrieves a committed account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return a.Clone(), nil
}

// GetByNumber retrieves a committed account by its external number.
func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.numbers[number]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return r.store.accounts[id].Clone(), nil
}

// ListByOwner lists the accounts of one owner, oldest first.
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]*domain.Account, 0)
	for _, a := range r.store.accounts {
		if a.OwnerID == ownerID {
			accounts = append(accounts, a.Clone())
		}
	}

	slices.SortFunc(accounts, func(a, b *domain.Account) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return accounts, nil
}

// List lists all accounts ordered by ID.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := make([]string, 0, len(r.store.accounts))
	for id := range r.store.accounts {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	if offset >= len(ids) {
		return []*domain.Account{}, nil
	}

	ids = ids[offset:min(offset+limit, len(ids))]

	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		accounts = append(accounts, r.store.accounts[id].Clone())
	}

	return accounts, nil
}

// GetByIDsForUpdate returns the accounts as seen by tx, ordered by ID.
// Exclusion is provided by the lock manager, not by this call.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	accounts := make([]*domain.Account, 0, len(sorted))
	for _, id := range sorted {
		if a := t.view(id); a != nil {
			accounts = append(accounts, a.Clone())
		}
	}

	return accounts, nil
}

// ApplyDelta stages a balance change conditional on expectedVersion.
func (r *AccountRepository) ApplyDelta(
	ctx context.Context,
	tx usecase.Transaction,
	id string,
	delta decimal.Decimal,
	expectedVersion int64,
) (*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	current := t.view(id)
	if current == nil {
		return nil, domain.ErrAccountNotFound
	}

	if current.Version != expectedVersion {
		return nil, domain.ErrVersionConflict
	}

	balance, err := current.ApplyDelta(delta)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	next.Balance = balance
	next.Version++
	next.UpdatedAt = time.Now().UTC()

	if _, ok := t.created[id]; ok {
		t.created[id] = next
		return next.Clone(), nil
	}

	if _, ok := t.base[id]; !ok {
		t.base[id] = current.Version
	}
	t.staged[id] = next

	return next.Clone(), nil
}

// view returns the account as tx currently sees it, or nil.
func (t *Tx) view(id string) *domain.Account {
	if a, ok := t.created[id]; ok {
		return a
	}

	if a, ok := t.staged[id]; ok {
		return a
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	return t.store.accounts[id]
}
