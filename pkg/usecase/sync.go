package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/domain/interfaces"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
)

// defaultRateLimitWait is how long sync backs off when a tracker throttles
// the client before retrying the same repository.
const defaultRateLimitWait = 10 * time.Minute

// Sync pulls issues from the configured trackers and merges them into the
// stored snapshot. Fetches are incremental per repository, bounded by the
// latest updated_at already stored.
type Sync struct {
	repo     interfaces.Repository
	trackers []interfaces.TrackerClient

	since         *time.Time
	rateLimitWait time.Duration
}

var _ interfaces.Syncer = (*Sync)(nil)

// SyncOption configures a Sync use case
type SyncOption func(*Sync)

// WithSince overrides the per-repository watermark with a fixed lower bound
func WithSince(t time.Time) SyncOption {
	return func(uc *Sync) {
		uc.since = &t
	}
}

// WithRateLimitWait sets the back-off before retrying a throttled fetch
func WithRateLimitWait(d time.Duration) SyncOption {
	return func(uc *Sync) {
		uc.rateLimitWait = d
	}
}

// NewSync creates a sync use case over the given trackers
func NewSync(repo interfaces.Repository, trackers []interfaces.TrackerClient, opts ...SyncOption) *Sync {
	uc := &Sync{
		repo:          repo,
		trackers:      trackers,
		rateLimitWait: defaultRateLimitWait,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Run fetches updated issues from every tracker and saves the merged
// snapshot. The snapshot is saved after each repository completes so an
// interrupted run keeps its progress.
func (uc *Sync) Run(ctx context.Context) error {
	syncID := types.NewSyncID()
	logger := ctxlog.From(ctx).With("sync_id", syncID)
	ctx = ctxlog.With(ctx, logger)

	snap, err := uc.repo.Load(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load snapshot")
	}

	logger.Info("Starting sync", "trackers", len(uc.trackers))
	started := time.Now()

	var total int
	for _, tracker := range uc.trackers {
		count, err := uc.syncTracker(ctx, tracker, snap)
		if err != nil {
			return err
		}
		total += count
	}

	if err := uc.repo.Save(ctx, snap); err != nil {
		return goerr.Wrap(err, "failed to save snapshot")
	}

	logger.Info("Sync completed",
		"updated_issues", total,
		"elapsed", time.Since(started).String(),
	)
	return nil
}

func (uc *Sync) syncTracker(ctx context.Context, tracker interfaces.TrackerClient, snap model.Snapshot) (int, error) {
	logger := ctxlog.From(ctx)
	org := tracker.Org()

	repos, err := uc.withRetryRepos(ctx, tracker)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list repositories", goerr.V("org", org))
	}

	var total int
	for _, repo := range repos {
		issues := snap.EnsureRepo(org, repo)

		since := issues.LastUpdated().Time
		if uc.since != nil {
			since = *uc.since
		}

		fetched, err := uc.withRetryIssues(ctx, tracker, repo, since)
		if err != nil {
			return total, goerr.Wrap(err, "failed to fetch issues",
				goerr.V("org", org),
				goerr.V("repo", repo),
			)
		}

		for num, issue := range fetched {
			issues[num] = issue
		}
		total += len(fetched)

		logger.Info("Synced repository",
			"org", org,
			"repo", repo,
			"since", since.Format(model.TimeFormat),
			"updated", len(fetched),
		)

		if len(fetched) > 0 {
			if err := uc.repo.Save(ctx, snap); err != nil {
				return total, goerr.Wrap(err, "failed to save snapshot",
					goerr.V("org", org),
					goerr.V("repo", repo),
				)
			}
		}
	}

	return total, nil
}

func (uc *Sync) withRetryRepos(ctx context.Context, tracker interfaces.TrackerClient) ([]types.RepoName, error) {
	for {
		repos, err := tracker.Repos(ctx)
		if err == nil {
			return repos, nil
		}
		if waitErr := uc.waitForRateLimit(ctx, err); waitErr != nil {
			return nil, waitErr
		}
	}
}

func (uc *Sync) withRetryIssues(ctx context.Context, tracker interfaces.TrackerClient, repo types.RepoName, since time.Time) (model.IssueSet, error) {
	for {
		issues, err := tracker.Issues(ctx, repo, since)
		if err == nil {
			return issues, nil
		}
		if waitErr := uc.waitForRateLimit(ctx, err); waitErr != nil {
			return nil, waitErr
		}
	}
}

// waitForRateLimit sleeps through a rate-limit error and returns nil to
// signal the caller to retry. Any other error is returned as is.
func (uc *Sync) waitForRateLimit(ctx context.Context, err error) error {
	if !errors.Is(err, model.ErrRateLimited) {
		return err
	}

	ctxlog.From(ctx).Warn("Rate limited, backing off",
		"wait", uc.rateLimitWait.String(),
	)

	timer := time.NewTimer(uc.rateLimitWait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "sync canceled during rate-limit wait")
	case <-timer.C:
		return nil
	}
}
