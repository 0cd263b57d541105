package interfaces

import (
	"context"

	"github.com/plan-lab/lignite/pkg/domain/model"
)

// Repository defines the interface for snapshot persistence
type Repository interface {
	// Load returns the stored snapshot. A store with no data returns an
	// empty snapshot, not an error.
	Load(ctx context.Context) (model.Snapshot, error)

	// Save persists the full snapshot
	Save(ctx context.Context, snap model.Snapshot) error

	// Close closes the repository connection
	Close() error
}
