// Package lock provides per-account exclusive locks acquired in a global order.
package lock

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/iho/bankcore/internal/domain"
)

// Manager hands out one exclusive lock per account id. Locks for several ids are
// always taken in ascending id order, so two callers can never wait on each other
// in a cycle.
type Manager struct {
	mu      sync.Mutex
	locks   map[string]*entry
	timeout time.Duration
}

type entry struct {
	sem  chan struct{}
	refs int
}

// NewManager creates a Manager. A positive timeout bounds each Acquire call.
func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		locks:   make(map[string]*entry),
		timeout: timeout,
	}
}

// Acquire locks every id in ascending order. It returns a release func that is
// safe to call more than once. When the timeout or ctx expires first, locks
// already taken are released and domain.ErrLockTimeout is returned.
func (m *Manager) Acquire(ctx context.Context, ids []string) (func(), error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	held := make([]string, 0, len(sorted))
	for _, id := range sorted {
		e := m.ref(id)

		select {
		case e.sem <- struct{}{}:
			held = append(held, id)
		case <-ctx.Done():
			m.unref(id)
			m.release(held)

			return nil, fmt.Errorf("%w: %w", domain.ErrLockTimeout, ctx.Err())
		}
	}

	var once sync.Once

	return func() {
		once.Do(func() { m.release(held) })
	}, nil
}

func (m *Manager) release(ids []string) {
	for i := len(ids) - 1; i >= 0; i-- {
		m.mu.Lock()
		e := m.locks[ids[i]]
		m.mu.Unlock()

		<-e.sem
		m.unref(ids[i])
	}
}

func (m *Manager) ref(id string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.locks[id]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.locks[id] = e
	}
	e.refs++

	return e
}

func (m *Manager) unref(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.locks[id]
	e.refs--
	if e.refs == 0 {
		delete(m.locks, id)
	}
}

// Len returns the number of accounts currently locked or waited on.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.locks)
}
