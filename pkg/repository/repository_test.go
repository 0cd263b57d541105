package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/plan-lab/lignite/pkg/domain/interfaces"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
	"github.com/plan-lab/lignite/pkg/repository"
)

func sampleSnapshot(t *testing.T) model.Snapshot {
	t.Helper()

	closed, err := model.ParseTimestamp("2024-01-10T12:00:00Z")
	gt.NoError(t, err)
	created, err := model.ParseTimestamp("2024-01-01T09:30:00Z")
	gt.NoError(t, err)

	ms := types.MilestoneName("v1")
	snap := model.NewSnapshot()
	issues := snap.EnsureRepo("acme", "core")
	issues["1"] = &model.Issue{
		Title:     "[3pt] fix the flaky scheduler",
		State:     model.IssueStateClosed,
		CreatedAt: created,
		UpdatedAt: closed,
		ClosedAt:  &closed,
		Labels:    []string{"bug"},
		Milestone: &ms,
		Weight:    3,
		Events: []model.Event{
			{CreatedAt: created, Kind: model.EventMilestoned, Milestone: &ms},
		},
	}
	return snap
}

func testRoundTrip(t *testing.T, repo interfaces.Repository) {
	t.Helper()
	ctx := context.Background()

	want := sampleSnapshot(t)
	gt.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	gt.NoError(t, err)

	issue := got["acme"]["core"]["1"]
	gt.V(t, issue).NotNil()
	gt.Equal(t, issue.Title, "[3pt] fix the flaky scheduler")
	gt.Equal(t, issue.Weight, 3)
	gt.V(t, issue.ClosedAt).NotNil()
	gt.Equal(t, issue.ClosedAt.UTC().Format(model.TimeFormat), "2024-01-10T12:00:00Z")
	gt.Equal(t, len(issue.Events), 1)
	gt.Equal(t, issue.Events[0].Kind, model.EventMilestoned)
}

func TestMemory(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		repo := repository.NewMemory()
		defer repo.Close()
		testRoundTrip(t, repo)
	})

	t.Run("empty store loads empty snapshot", func(t *testing.T) {
		repo := repository.NewMemory()
		defer repo.Close()

		snap, err := repo.Load(context.Background())
		gt.NoError(t, err)
		gt.Equal(t, len(snap), 0)
	})

	t.Run("loaded snapshot does not share state with the store", func(t *testing.T) {
		ctx := context.Background()
		repo := repository.NewMemory()
		defer repo.Close()
		gt.NoError(t, repo.Save(ctx, sampleSnapshot(t)))

		first, err := repo.Load(ctx)
		gt.NoError(t, err)
		first["acme"]["core"]["1"].Title = "mutated"

		second, err := repo.Load(ctx)
		gt.NoError(t, err)
		gt.Equal(t, second["acme"]["core"]["1"].Title, "[3pt] fix the flaky scheduler")
	})
}

func TestFile(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "issues.json")
		repo, err := repository.NewFile(path)
		gt.NoError(t, err)
		defer repo.Close()
		testRoundTrip(t, repo)
	})

	t.Run("missing file loads empty snapshot", func(t *testing.T) {
		repo, err := repository.NewFile(filepath.Join(t.TempDir(), "absent.json"))
		gt.NoError(t, err)
		defer repo.Close()

		snap, err := repo.Load(context.Background())
		gt.NoError(t, err)
		gt.Equal(t, len(snap), 0)
	})

	t.Run("empty path is rejected", func(t *testing.T) {
		_, err := repository.NewFile("")
		gt.Error(t, err)
	})

	t.Run("corrupt file is a load error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		gt.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		repo, err := repository.NewFile(path)
		gt.NoError(t, err)
		defer repo.Close()

		_, err = repo.Load(context.Background())
		gt.Error(t, err)
	})

	t.Run("derives missing weights from title on load", func(t *testing.T) {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "issues.json")
		repo, err := repository.NewFile(path)
		gt.NoError(t, err)
		defer repo.Close()

		snap := sampleSnapshot(t)
		snap["acme"]["core"]["1"].Weight = 0
		gt.NoError(t, repo.Save(ctx, snap))

		got, err := repo.Load(ctx)
		gt.NoError(t, err)
		gt.Equal(t, got["acme"]["core"]["1"].Weight, 3)
	})

	t.Run("malformed timestamp propagates as load error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "issues.json")
		payload := `{"acme":{"core":{"1":{"title":"x","created_at":"not-a-time","updated_at":"2024-01-01T00:00:00Z","closed_at":null,"state":"open","is_pr":false,"labels":[],"milestone":null,"events":[]}}}}`
		gt.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

		repo, err := repository.NewFile(path)
		gt.NoError(t, err)
		defer repo.Close()

		_, err = repo.Load(context.Background())
		gt.Error(t, err)
	})
}
