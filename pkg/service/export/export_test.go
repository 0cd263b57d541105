package export_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/plan-lab/lignite/pkg/burndown"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
	"github.com/plan-lab/lignite/pkg/service/export"
	"github.com/tealeg/xlsx"
)

func testFixtures(t *testing.T) (model.Snapshot, []*burndown.MilestoneReport) {
	t.Helper()

	created, err := model.ParseTimestamp("2024-01-01T09:00:00Z")
	gt.NoError(t, err)
	milestoned, err := model.ParseTimestamp("2024-01-02T09:00:00Z")
	gt.NoError(t, err)
	closed, err := model.ParseTimestamp("2024-01-05T17:00:00Z")
	gt.NoError(t, err)

	ms := types.MilestoneName("v1")
	snap := model.NewSnapshot()
	issues := snap.EnsureRepo("acme", "core")
	issues["1"] = &model.Issue{
		Title:     "  fix the scheduler  ",
		State:     model.IssueStateClosed,
		CreatedAt: created,
		UpdatedAt: closed,
		ClosedAt:  &closed,
		Milestone: &ms,
		Weight:    2,
		Events: []model.Event{
			{CreatedAt: milestoned, Kind: model.EventMilestoned, Milestone: &ms},
		},
	}
	issues["2"] = &model.Issue{
		Title:     "a pull request",
		State:     model.IssueStateOpen,
		CreatedAt: created,
		UpdatedAt: created,
		IsPR:      true,
	}

	cfg := &model.MilestonesConfig{
		Milestones: []model.LogicalMilestone{
			{
				Name: "Release 1.0",
				Sources: []model.MilestoneSource{
					{Org: "acme", Repo: "core", Milestone: "v1"},
				},
			},
		},
	}

	return snap, burndown.Compute(context.Background(), snap, cfg)
}

func TestWriteTSV(t *testing.T) {
	snap, _ := testFixtures(t)

	var buf bytes.Buffer
	gt.NoError(t, export.WriteTSV(&buf, snap))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	gt.Equal(t, len(lines), 2) // header + one issue, the PR is excluded

	gt.Equal(t, lines[0], "path\torgname\treponame\tid\ttitle\tstate\tcreated_at\tupdated_at\tclosed_at")

	fields := strings.Split(lines[1], "\t")
	gt.Equal(t, fields[0], "acme/core/issues/1")
	gt.Equal(t, fields[4], "fix the scheduler")
	gt.Equal(t, fields[5], "closed")
	gt.Equal(t, fields[8], "2024-01-05T17:00:00Z")
}

func TestWriteXLSX(t *testing.T) {
	snap, reports := testFixtures(t)

	var buf bytes.Buffer
	gt.NoError(t, export.WriteXLSX(&buf, snap, reports))

	file, err := xlsx.OpenBinary(buf.Bytes())
	gt.NoError(t, err)
	gt.Equal(t, len(file.Sheets), 2)
	gt.Equal(t, file.Sheets[0].Name, "All issues")
	gt.Equal(t, file.Sheets[1].Name, "Release 1.0")

	// Milestone sheet: header, then one row per day Jan 2 through Jan 5.
	msSheet := file.Sheets[1]
	gt.Equal(t, msSheet.Rows[0].Cells[0].Value, "date")
	gt.True(t, len(msSheet.Rows) > 4)
}

func TestWriteChart(t *testing.T) {
	_, reports := testFixtures(t)

	var buf bytes.Buffer
	gt.NoError(t, export.WriteChart(&buf, reports[0]))

	html := buf.String()
	gt.S(t, html).Contains("Release 1.0")
	gt.S(t, html).Contains("2024-01-02")
}

func TestWriteChartPage(t *testing.T) {
	_, reports := testFixtures(t)

	var buf bytes.Buffer
	gt.NoError(t, export.WriteChartPage(&buf, reports))
	gt.S(t, buf.String()).Contains("Release 1.0")
}
