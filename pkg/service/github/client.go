package github

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/domain/interfaces"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
)

const perPage = 100

// Client fetches issues and their lifecycle events from a GitHub
// organization through the REST API.
type Client struct {
	gh         *github.Client
	org        types.OrgName
	repoFilter types.RepoName
}

var _ interfaces.TrackerClient = (*Client)(nil)

// New creates a GitHub tracker client. repoFilter, when non-empty,
// restricts the sync to a single repository.
func New(token string, org types.OrgName, repoFilter types.RepoName) *Client {
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}

	return &Client{
		gh:         gh,
		org:        org,
		repoFilter: repoFilter,
	}
}

// Org returns the organization this client is bound to
func (c *Client) Org() types.OrgName {
	return c.org
}

// Repos lists all repositories of the organization
func (c *Client) Repos(ctx context.Context) ([]types.RepoName, error) {
	if c.repoFilter != "" {
		return []types.RepoName{c.repoFilter}, nil
	}

	var repos []types.RepoName
	opts := &github.RepositoryListByOrgOptions{
		Type:        "all",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for {
		page, resp, err := c.gh.Repositories.ListByOrg(ctx, c.org.String(), opts)
		if err != nil {
			return nil, wrapAPIError(err, "failed to list repositories",
				goerr.V("org", c.org))
		}
		for _, repo := range page {
			repos = append(repos, types.RepoName(repo.GetName()))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return repos, nil
}

// Issues fetches the repository's issues updated at or after since,
// including pull requests (marked is_pr, excluded from computation later),
// with their milestone and label events attached.
func (c *Client) Issues(ctx context.Context, repo types.RepoName, since time.Time) (model.IssueSet, error) {
	logger := ctxlog.From(ctx)
	issues := model.IssueSet{}

	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Since:       since,
		Sort:        "updated",
		Direction:   "asc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for {
		page, resp, err := c.gh.Issues.ListByRepo(ctx, c.org.String(), repo.String(), opts)
		if err != nil {
			return nil, wrapAPIError(err, "failed to list issues",
				goerr.V("org", c.org),
				goerr.V("repo", repo))
		}

		for _, issue := range page {
			events, err := c.issueEvents(ctx, repo, issue.GetNumber())
			if err != nil {
				return nil, err
			}

			converted := convertIssue(issue, events)
			issues[types.IssueNumber(strconv.Itoa(issue.GetNumber()))] = converted

			logger.Debug("fetched issue",
				"org", c.org,
				"repo", repo,
				"number", issue.GetNumber(),
				"title", issue.GetTitle(),
				"updated_at", issue.GetUpdatedAt(),
			)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return issues, nil
}

// issueEvents fetches the lifecycle events we track for one issue
func (c *Client) issueEvents(ctx context.Context, repo types.RepoName, number int) ([]model.Event, error) {
	var events []model.Event
	opts := &github.ListOptions{PerPage: perPage}

	for {
		page, resp, err := c.gh.Issues.ListIssueEvents(ctx, c.org.String(), repo.String(), number, opts)
		if err != nil {
			return nil, wrapAPIError(err, "failed to list issue events",
				goerr.V("org", c.org),
				goerr.V("repo", repo),
				goerr.V("number", number))
		}

		for _, evt := range page {
			kind := model.EventKind(evt.GetEvent())
			switch kind {
			case model.EventMilestoned, model.EventDemilestoned, model.EventLabeled, model.EventUnlabeled:
			default:
				continue
			}

			converted := model.Event{
				CreatedAt: model.NewTimestamp(evt.GetCreatedAt().Time),
				Kind:      kind,
			}
			if ms := evt.Milestone; ms != nil {
				name := types.MilestoneName(ms.GetTitle())
				converted.Milestone = &name
			}
			if label := evt.Label; label != nil {
				name := label.GetName()
				converted.Label = &name
			}

			events = append(events, converted)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return events, nil
}

// convertIssue maps a GitHub issue to the snapshot model
func convertIssue(issue *github.Issue, events []model.Event) *model.Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	converted := &model.Issue{
		Title:     issue.GetTitle(),
		State:     issue.GetState(),
		CreatedAt: model.NewTimestamp(issue.GetCreatedAt().Time),
		UpdatedAt: model.NewTimestamp(issue.GetUpdatedAt().Time),
		IsPR:      issue.IsPullRequest(),
		Labels:    labels,
		Events:    events,
		Weight:    model.DeriveWeight(issue.GetTitle(), labels),
	}

	if issue.ClosedAt != nil {
		closed := model.NewTimestamp(issue.GetClosedAt().Time)
		converted.ClosedAt = &closed
	}
	if ms := issue.Milestone; ms != nil {
		name := types.MilestoneName(ms.GetTitle())
		converted.Milestone = &name
		converted.MilestoneNumber = ms.GetNumber()
	}

	return converted
}

// wrapAPIError normalizes GitHub API failures. Rate limits map onto the
// domain sentinel so sync can back off and retry.
func wrapAPIError(err error, msg string, values ...goerr.Option) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return goerr.Wrap(model.ErrRateLimited, msg, values...)
	}
	return goerr.Wrap(err, msg, values...)
}
