package repository

import (
	"context"
	"sync"

	"github.com/plan-lab/lignite/pkg/domain/interfaces"
	"github.com/plan-lab/lignite/pkg/domain/model"
)

// Memory implements Repository with in-memory storage. Data is lost on
// shutdown; it backs tests and dry runs.
type Memory struct {
	mu   sync.RWMutex
	snap model.Snapshot
}

// NewMemory creates a new memory repository
func NewMemory() interfaces.Repository {
	return &Memory{snap: model.NewSnapshot()}
}

// Load returns a deep copy of the stored snapshot
func (m *Memory) Load(ctx context.Context) (model.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snap.Clone(), nil
}

// Save replaces the stored snapshot with a deep copy of the given one
func (m *Memory) Save(ctx context.Context, snap model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap = snap.Clone()
	return nil
}

// Close is a no-op for the memory repository
func (m *Memory) Close() error {
	return nil
}
