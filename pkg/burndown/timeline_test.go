package burndown

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
)

func ts(t *testing.T, s string) model.Timestamp {
	t.Helper()
	parsed, err := model.ParseTimestamp(s)
	gt.NoError(t, err)
	return parsed
}

func tsPtr(t *testing.T, s string) *model.Timestamp {
	t.Helper()
	parsed := ts(t, s)
	return &parsed
}

func milestone(name string) *types.MilestoneName {
	n := types.MilestoneName(name)
	return &n
}

func dateOnly(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	gt.NoError(t, err)
	return d.UTC()
}

func TestIssuePoints(t *testing.T) {
	t.Run("entry and exit from explicit events", func(t *testing.T) {
		issue := &model.Issue{
			Title: "regular membership",
			State: model.IssueStateOpen,
			Events: []model.Event{
				{CreatedAt: ts(t, "2024-01-02T10:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("v1")},
				{CreatedAt: ts(t, "2024-01-08T12:00:00Z"), Kind: model.EventDemilestoned, Milestone: milestone("v1")},
			},
		}

		points := issuePoints(issue, AliasTable{})
		gt.Equal(t, len(points), 1)
		gt.Equal(t, points["v1"], []Point{
			{Date: dateOnly(t, "2024-01-02"), Delta: +1},
			{Date: dateOnly(t, "2024-01-08"), Delta: -1},
		})
	})

	t.Run("milestoned event after closure produces no point", func(t *testing.T) {
		issue := &model.Issue{
			Title:    "late milestone change",
			State:    model.IssueStateClosed,
			ClosedAt: tsPtr(t, "2024-01-05T00:00:00Z"),
			Events: []model.Event{
				{CreatedAt: ts(t, "2024-01-06T09:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("v1")},
			},
		}

		points := issuePoints(issue, AliasTable{})
		gt.Equal(t, len(points), 0)
	})

	t.Run("closing while milestoned synthesizes exactly one exit", func(t *testing.T) {
		issue := &model.Issue{
			Title:    "closed without demilestone",
			State:    model.IssueStateClosed,
			ClosedAt: tsPtr(t, "2024-01-10T15:00:00Z"),
			Events: []model.Event{
				{CreatedAt: ts(t, "2024-01-02T10:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("v1")},
			},
		}

		points := issuePoints(issue, AliasTable{})
		gt.Equal(t, points["v1"], []Point{
			{Date: dateOnly(t, "2024-01-02"), Delta: +1},
			{Date: dateOnly(t, "2024-01-10"), Delta: -1},
		})
	})

	t.Run("exit backdated to closure when closed inside the interval", func(t *testing.T) {
		issue := &model.Issue{
			Title:    "administrative demilestone after closure",
			State:    model.IssueStateClosed,
			ClosedAt: tsPtr(t, "2024-01-07T08:00:00Z"),
			Events: []model.Event{
				{CreatedAt: ts(t, "2024-01-02T10:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("v1")},
				{CreatedAt: ts(t, "2024-01-07T08:00:00Z"), Kind: model.EventDemilestoned, Milestone: milestone("v1")},
			},
		}

		points := issuePoints(issue, AliasTable{})
		gt.Equal(t, points["v1"][1], Point{Date: dateOnly(t, "2024-01-07"), Delta: -1})
		// No synthetic exit on top of the explicit one.
		gt.Equal(t, len(points["v1"]), 2)
	})

	t.Run("demilestone without matching entry is ignored", func(t *testing.T) {
		issue := &model.Issue{
			Title: "membership predates the window",
			State: model.IssueStateOpen,
			Events: []model.Event{
				{CreatedAt: ts(t, "2024-01-03T10:00:00Z"), Kind: model.EventDemilestoned, Milestone: milestone("v1")},
			},
		}

		points := issuePoints(issue, AliasTable{})
		gt.Equal(t, len(points), 0)
	})

	t.Run("never milestoned issue contributes nothing", func(t *testing.T) {
		issue := &model.Issue{
			Title: "plain issue",
			State: model.IssueStateOpen,
			Events: []model.Event{
				{CreatedAt: ts(t, "2024-01-03T10:00:00Z"), Kind: model.EventLabeled, Label: strPtr("bug")},
			},
		}

		gt.Equal(t, len(issuePoints(issue, AliasTable{})), 0)
	})

	t.Run("open issue keeps its membership open", func(t *testing.T) {
		issue := &model.Issue{
			Title: "still open",
			State: model.IssueStateOpen,
			Events: []model.Event{
				{CreatedAt: ts(t, "2024-01-02T10:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("v1")},
			},
		}

		points := issuePoints(issue, AliasTable{})
		gt.Equal(t, points["v1"], []Point{{Date: dateOnly(t, "2024-01-02"), Delta: +1}})
	})

	t.Run("repeated membership cycles pair up", func(t *testing.T) {
		issue := &model.Issue{
			Title:    "in and out twice",
			State:    model.IssueStateClosed,
			ClosedAt: tsPtr(t, "2024-01-20T00:00:00Z"),
			Events: []model.Event{
				{CreatedAt: ts(t, "2024-01-02T00:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("v1")},
				{CreatedAt: ts(t, "2024-01-05T00:00:00Z"), Kind: model.EventDemilestoned, Milestone: milestone("v1")},
				{CreatedAt: ts(t, "2024-01-10T00:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("v1")},
			},
		}

		points := issuePoints(issue, AliasTable{})
		gt.Equal(t, points["v1"], []Point{
			{Date: dateOnly(t, "2024-01-02"), Delta: +1},
			{Date: dateOnly(t, "2024-01-05"), Delta: -1},
			{Date: dateOnly(t, "2024-01-10"), Delta: +1},
			{Date: dateOnly(t, "2024-01-20"), Delta: -1},
		})
	})

	t.Run("alias table rewrites recorded names", func(t *testing.T) {
		issue := &model.Issue{
			Title:     "renamed milestone",
			State:     model.IssueStateOpen,
			Milestone: milestone("Sprint 4 (renamed)"),
			Events: []model.Event{
				{CreatedAt: ts(t, "2024-01-02T00:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("Sprint 4")},
			},
		}
		aliases := AliasTable{"Sprint 4": "Sprint 4 (renamed)"}

		points := issuePoints(issue, aliases)
		gt.Equal(t, len(points["Sprint 4 (renamed)"]), 1)
		gt.Equal(t, len(points["Sprint 4"]), 0)
	})
}

func TestNormalizeEvents(t *testing.T) {
	t.Run("keeps only milestone changes in original order", func(t *testing.T) {
		issue := &model.Issue{
			Events: []model.Event{
				{CreatedAt: ts(t, "2024-01-01T00:00:00Z"), Kind: model.EventLabeled, Label: strPtr("bug")},
				{CreatedAt: ts(t, "2024-01-02T00:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("v1")},
				{CreatedAt: ts(t, "2024-01-03T00:00:00Z"), Kind: model.EventUnlabeled, Label: strPtr("bug")},
				{CreatedAt: ts(t, "2024-01-04T00:00:00Z"), Kind: model.EventDemilestoned, Milestone: milestone("v1")},
			},
		}

		events := normalizeEvents(issue)
		gt.Equal(t, len(events), 2)
		gt.Equal(t, events[0].Kind, model.EventMilestoned)
		gt.Equal(t, events[1].Kind, model.EventDemilestoned)
	})

	t.Run("clips events strictly after closure", func(t *testing.T) {
		issue := &model.Issue{
			ClosedAt: tsPtr(t, "2024-01-03T00:00:00Z"),
			Events: []model.Event{
				{CreatedAt: ts(t, "2024-01-02T00:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("v1")},
				{CreatedAt: ts(t, "2024-01-03T00:00:00Z"), Kind: model.EventDemilestoned, Milestone: milestone("v1")},
				{CreatedAt: ts(t, "2024-01-04T00:00:00Z"), Kind: model.EventMilestoned, Milestone: milestone("v2")},
			},
		}

		events := normalizeEvents(issue)
		gt.Equal(t, len(events), 2)
		for _, evt := range events {
			gt.Equal(t, *evt.Milestone, types.MilestoneName("v1"))
		}
	})

	t.Run("drops events without a milestone name", func(t *testing.T) {
		issue := &model.Issue{
			Events: []model.Event{
				{CreatedAt: ts(t, "2024-01-02T00:00:00Z"), Kind: model.EventMilestoned},
			},
		}

		gt.Equal(t, len(normalizeEvents(issue)), 0)
	})
}

func strPtr(s string) *string {
	return &s
}
