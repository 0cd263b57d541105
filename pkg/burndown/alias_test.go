package burndown

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
)

func TestBuildAliasTable(t *testing.T) {
	ctx := context.Background()

	t.Run("detects a renamed milestone", func(t *testing.T) {
		issues := model.IssueSet{
			"1": &model.Issue{
				Milestone: milestone("Sprint 4 (renamed)"),
				Events: []model.Event{
					{CreatedAt: ts(t, "2024-01-02T00:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("Sprint 4")},
				},
			},
		}

		table := BuildAliasTable(ctx, issues)
		gt.Equal(t, table.Resolve("Sprint 4"), types.MilestoneName("Sprint 4 (renamed)"))
	})

	t.Run("unknown names resolve to themselves", func(t *testing.T) {
		table := BuildAliasTable(ctx, model.IssueSet{})
		gt.Equal(t, table.Resolve("v9"), types.MilestoneName("v9"))
	})

	t.Run("scan stops at the first demilestone", func(t *testing.T) {
		// The "old" membership before the demilestone belongs to a prior
		// milestone and must not alias to the current one.
		issues := model.IssueSet{
			"1": &model.Issue{
				Milestone: milestone("v2"),
				Events: []model.Event{
					{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("old")},
					{CreatedAt: ts(t, "2024-01-02T00:00:00Z"), Kind: model.EventDemilestoned, Milestone: milestone("old")},
					{CreatedAt: ts(t, "2024-01-03T00:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("v2-draft")},
				},
			},
		}

		table := BuildAliasTable(ctx, issues)
		gt.Equal(t, table.Resolve("v2-draft"), types.MilestoneName("v2"))
		gt.Equal(t, table.Resolve("old"), types.MilestoneName("old"))
	})

	t.Run("issues without a current milestone are skipped", func(t *testing.T) {
		issues := model.IssueSet{
			"1": &model.Issue{
				Events: []model.Event{
					{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("v1")},
				},
			},
		}

		gt.Equal(t, len(BuildAliasTable(ctx, issues)), 0)
	})

	t.Run("matching names register no alias", func(t *testing.T) {
		issues := model.IssueSet{
			"1": &model.Issue{
				Milestone: milestone("v1"),
				Events: []model.Event{
					{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("v1")},
				},
			},
		}

		gt.Equal(t, len(BuildAliasTable(ctx, issues)), 0)
	})

	t.Run("conflicting aliases keep the latest registration", func(t *testing.T) {
		issues := model.IssueSet{
			"1": &model.Issue{
				Milestone: milestone("first-target"),
				Events: []model.Event{
					{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("shared")},
				},
			},
			"2": &model.Issue{
				Milestone: milestone("second-target"),
				Events: []model.Event{
					{CreatedAt: ts(t, "2024-01-02T00:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("shared")},
				},
			},
		}

		// Issues are visited in sorted number order, so "2" registers last.
		table := BuildAliasTable(ctx, issues)
		gt.Equal(t, table.Resolve("shared"), types.MilestoneName("second-target"))
	})
}
