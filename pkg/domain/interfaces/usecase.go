package interfaces

import (
	"context"

	"github.com/plan-lab/lignite/pkg/burndown"
	"github.com/plan-lab/lignite/pkg/domain/model"
)

// Reporter computes burndown reports from the stored snapshot
type Reporter interface {
	// Generate computes one report per declared logical milestone, in
	// declaration order.
	Generate(ctx context.Context) ([]*burndown.MilestoneReport, error)

	// Find computes the report of one logical milestone, returning
	// model.ErrMilestoneNotFound for undeclared names.
	Find(ctx context.Context, name string) (*burndown.MilestoneReport, error)

	// Snapshot loads the raw issue snapshot for flat issue listings
	Snapshot(ctx context.Context) (model.Snapshot, error)
}

// Syncer refreshes the stored snapshot from the configured trackers
type Syncer interface {
	Run(ctx context.Context) error
}
