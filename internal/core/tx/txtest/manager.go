// Package txtest provides an in-memory tx.Manager for domain tests.
package txtest

import (
	"context"
	"sync"

	"servicecenter/internal/core/tx"
)

var _ tx.ReadOnlyManager = (*Manager)(nil)

// Checkpointer is implemented by fake stores that can roll back.
// Checkpoint returns a restore function bringing the store back to the captured state.
type Checkpointer interface {
	Checkpoint() (restore func())
}

// Manager captures every registered store before fn and restores them when fn fails,
// which models a database rollback for in-memory fakes.
type Manager struct {
	mu     sync.Mutex
	stores []Checkpointer
	depth  int

	Begun      int
	Committed  int
	RolledBack int
}

// New creates a Manager guarding the given stores.
func New(stores ...Checkpointer) *Manager {
	return &Manager{stores: stores}
}

// RunInTransaction implements tx.Manager.
func (m *Manager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	if m.depth > 0 {
		m.mu.Unlock()
		return fn(ctx)
	}
	m.depth++
	m.Begun++
	restores := make([]func(), 0, len(m.stores))
	for _, s := range m.stores {
		restores = append(restores, s.Checkpoint())
	}
	m.mu.Unlock()

	err := fn(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.depth--
	if err != nil {
		for _, restore := range restores {
			restore()
		}
		m.RolledBack++
		return err
	}
	m.Committed++
	return nil
}

// ReadOnly implements tx.ReadOnlyManager.
func (m *Manager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransaction(ctx, fn)
}
