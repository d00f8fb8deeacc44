// Package memory is a process-local storage backend. Writes are staged on a Tx
// and become visible to readers only when the Tx commits.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/usecase"
)

// ErrTxClosed is returned when a committed or rolled back Tx is used again.
var ErrTxClosed = errors.New("memory: transaction already closed")

// Store holds committed state shared by the repositories of this package.
type Store struct {
	mu        sync.RWMutex
	accounts  map[string]*domain.Account
	numbers   map[string]string
	ledger    []*domain.Transaction
	outbox    []*domain.OutboxEvent
	nextTxID  int64
	lastStamp time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		numbers:  make(map[string]string),
	}
}

// Tx is a unit of work against a Store.
type Tx struct {
	store   *Store
	created map[string]*domain.Account
	staged  map[string]*domain.Account
	// base is the committed version each staged account was read at.
	base   map[string]int64
	ledger []*domain.Transaction
	outbox []*domain.OutboxEvent
	closed bool
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{
		store:   m.store,
		created: make(map[string]*domain.Account),
		staged:  make(map[string]*domain.Account),
		base:    make(map[string]int64),
	}, nil
}

// Commit publishes every staged change at once. It fails with
// domain.ErrVersionConflict if a staged account changed since it was read.
func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return ErrTxClosed
	}
	t.closed = true

	if err := ctx.Err(); err != nil {
		return err
	}

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, version := range t.base {
		current, ok := s.accounts[id]
		if !ok || current.Version != version {
			return domain.ErrVersionConflict
		}
	}

	for _, a := range t.created {
		if _, taken := s.numbers[a.Number]; taken {
			return domain.ErrNumberTaken
		}
	}

	for id, a := range t.created {
		s.accounts[id] = a
		s.numbers[a.Number] = id
	}

	for id, a := range t.staged {
		s.accounts[id] = a
	}

	s.ledger = append(s.ledger, t.ledger...)

	for _, event := range t.outbox {
		if event.CreatedAt.IsZero() {
			event.CreatedAt = time.Now().UTC()
		}
		s.outbox = append(s.outbox, event)
	}

	return nil
}

// Rollback discards staged changes. Rolling back a closed Tx is a no-op.
func (t *Tx) Rollback(context.Context) error {
	t.closed = true
	return nil
}

// nextRecord reserves the next transaction id and a strictly increasing
// timestamp. Ids of rolled back transactions are not reused.
func (s *Store) nextRecord() (int64, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTxID++

	now := time.Now().UTC()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = now

	return s.nextTxID, now
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, errors.New("memory: foreign transaction")
	}

	if t.closed {
		return nil, ErrTxClosed
	}

	return t, nil
}
