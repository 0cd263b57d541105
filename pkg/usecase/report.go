package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/burndown"
	"github.com/plan-lab/lignite/pkg/domain/interfaces"
	"github.com/plan-lab/lignite/pkg/domain/model"
)

// Report computes burndown reports from the stored snapshot. Every call
// recomputes from scratch; the core holds no state between runs.
type Report struct {
	repo interfaces.Repository
	cfg  *model.MilestonesConfig
}

var _ interfaces.Reporter = (*Report)(nil)

// NewReport creates a report use case
func NewReport(repo interfaces.Repository, cfg *model.MilestonesConfig) *Report {
	return &Report{
		repo: repo,
		cfg:  cfg,
	}
}

// Generate computes one report per declared logical milestone
func (uc *Report) Generate(ctx context.Context) ([]*burndown.MilestoneReport, error) {
	snap, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load snapshot")
	}

	return burndown.Compute(ctx, snap, uc.cfg), nil
}

// Find computes the report of a single logical milestone
func (uc *Report) Find(ctx context.Context, name string) (*burndown.MilestoneReport, error) {
	logical := uc.cfg.Find(name)
	if logical == nil {
		return nil, goerr.Wrap(model.ErrMilestoneNotFound, "unknown logical milestone",
			goerr.V("name", name))
	}

	snap, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load snapshot")
	}

	reports := burndown.Compute(ctx, snap, &model.MilestonesConfig{
		Milestones: []model.LogicalMilestone{*logical},
	})
	return reports[0], nil
}

// Snapshot loads the raw issue snapshot
func (uc *Report) Snapshot(ctx context.Context) (model.Snapshot, error) {
	snap, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load snapshot")
	}
	return snap, nil
}
