package gitlab

import (
	"context"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/domain/interfaces"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
	gitlab "github.com/xanzy/go-gitlab"
)

const perPage = 100

// Client fetches issues and resource milestone events from a GitLab group,
// including projects in subgroups.
type Client struct {
	gl        *gitlab.Client
	group     types.OrgName
	source    string
	whitelist []string
	projects  map[types.RepoName]int
}

var _ interfaces.TrackerClient = (*Client)(nil)

// New creates a GitLab tracker client. baseURL defaults to gitlab.com when
// empty; whitelist entries are fnmatch-style patterns matched against each
// project's full path.
func New(token string, baseURL string, group types.OrgName, whitelist []string) (*Client, error) {
	var opts []gitlab.ClientOptionFunc
	source := "gitlab.com"
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
		source = strings.TrimPrefix(strings.TrimPrefix(baseURL, "https://"), "http://")
		source = strings.TrimSuffix(source, "/")
	}

	gl, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gitlab client")
	}

	return &Client{
		gl:        gl,
		group:     group,
		source:    source,
		whitelist: whitelist,
		projects:  map[types.RepoName]int{},
	}, nil
}

// Org returns the group this client is bound to
func (c *Client) Org() types.OrgName {
	return c.group
}

// Repos walks the group's projects, subgroups included, and returns the
// project paths relative to the group. Projects outside the whitelist are
// skipped.
func (c *Client) Repos(ctx context.Context) ([]types.RepoName, error) {
	var repos []types.RepoName
	opts := &gitlab.ListGroupProjectsOptions{
		IncludeSubGroups: gitlab.Ptr(true),
		ListOptions:      gitlab.ListOptions{PerPage: perPage},
	}

	for {
		page, resp, err := c.gl.Groups.ListGroupProjects(c.group.String(), opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, wrapAPIError(resp, err, "failed to list group projects",
				goerr.V("group", c.group))
		}

		for _, project := range page {
			if !c.allowed(project.PathWithNamespace) {
				continue
			}

			repo := types.RepoName(strings.TrimPrefix(project.PathWithNamespace, c.group.String()+"/"))
			c.projects[repo] = project.ID
			repos = append(repos, repo)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return repos, nil
}

// Issues fetches the project's issues updated at or after since, with
// milestone events mapped onto the milestoned/demilestoned kinds.
func (c *Client) Issues(ctx context.Context, repo types.RepoName, since time.Time) (model.IssueSet, error) {
	projectID, ok := c.projects[repo]
	if !ok {
		return nil, goerr.New("unknown project, call Repos first",
			goerr.V("group", c.group),
			goerr.V("repo", repo))
	}

	logger := ctxlog.From(ctx)
	issues := model.IssueSet{}

	opts := &gitlab.ListProjectIssuesOptions{
		OrderBy:      gitlab.Ptr("created_at"),
		Sort:         gitlab.Ptr("asc"),
		UpdatedAfter: &since,
		ListOptions:  gitlab.ListOptions{PerPage: perPage},
	}

	for {
		page, resp, err := c.gl.Issues.ListProjectIssues(projectID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, wrapAPIError(resp, err, "failed to list project issues",
				goerr.V("group", c.group),
				goerr.V("repo", repo))
		}

		for _, issue := range page {
			events, err := c.issueEvents(ctx, projectID, issue.IID)
			if err != nil {
				return nil, err
			}

			issues[types.IssueNumber(strconv.Itoa(issue.IID))] = c.convertIssue(issue, events)

			logger.Debug("fetched issue",
				"group", c.group,
				"repo", repo,
				"iid", issue.IID,
				"title", issue.Title,
			)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return issues, nil
}

// issueEvents maps GitLab resource milestone events (add/remove) onto the
// tracker-neutral milestoned/demilestoned kinds.
func (c *Client) issueEvents(ctx context.Context, projectID, issueIID int) ([]model.Event, error) {
	var events []model.Event
	opts := &gitlab.ListMilestoneEventsOptions{ListOptions: gitlab.ListOptions{PerPage: perPage}}

	for {
		page, resp, err := c.gl.ResourceMilestoneEvents.ListIssueMilestoneEvents(projectID, issueIID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, wrapAPIError(resp, err, "failed to list milestone events",
				goerr.V("project", projectID),
				goerr.V("iid", issueIID))
		}

		for _, evt := range page {
			var kind model.EventKind
			switch evt.Action {
			case "add":
				kind = model.EventMilestoned
			case "remove":
				kind = model.EventDemilestoned
			default:
				continue
			}

			converted := model.Event{
				CreatedAt: model.NewTimestamp(*evt.CreatedAt),
				Kind:      kind,
			}
			if evt.Milestone != nil {
				name := types.MilestoneName(evt.Milestone.Title)
				converted.Milestone = &name
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

// convertIssue maps a GitLab issue to the snapshot model. GitLab has no
// pull requests on the issue endpoint, so is_pr is always false, and it
// reports issue weight natively.
func (c *Client) convertIssue(issue *gitlab.Issue, events []model.Event) *model.Issue {
	weight := issue.Weight
	if weight == 0 {
		weight = 1
	}

	converted := &model.Issue{
		Source:    c.source,
		Title:     issue.Title,
		State:     issue.State,
		CreatedAt: model.NewTimestamp(*issue.CreatedAt),
		UpdatedAt: model.NewTimestamp(*issue.UpdatedAt),
		Labels:    append([]string(nil), issue.Labels...),
		Events:    events,
		Weight:    weight,
	}

	if issue.ClosedAt != nil {
		closed := model.NewTimestamp(*issue.ClosedAt)
		converted.ClosedAt = &closed
	}
	if issue.Milestone != nil {
		name := types.MilestoneName(issue.Milestone.Title)
		converted.Milestone = &name
		converted.MilestoneNumber = issue.Milestone.IID
	}

	return converted
}

// allowed applies the project whitelist; an empty whitelist allows all
func (c *Client) allowed(projectPath string) bool {
	if len(c.whitelist) == 0 {
		return true
	}
	for _, pattern := range c.whitelist {
		if ok, err := path.Match(pattern, projectPath); err == nil && ok {
			return true
		}
	}
	return false
}

// wrapAPIError normalizes GitLab API failures; HTTP 429 maps onto the rate
// limit sentinel so sync can back off and retry.
func wrapAPIError(resp *gitlab.Response, err error, msg string, values ...goerr.Option) error {
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		return goerr.Wrap(model.ErrRateLimited, msg, values...)
	}
	return goerr.Wrap(err, msg, values...)
}
