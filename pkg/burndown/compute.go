package burndown

import (
	"context"
	"fmt"
	"sort"

	"github.com/m-mizutani/ctxlog"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
)

// ReportIssue is one issue contributing to a logical milestone's burndown,
// annotated with its origin and the logical milestone it was counted under.
type ReportIssue struct {
	Org       types.OrgName     `json:"orgname"`
	Repo      types.RepoName    `json:"reponame"`
	Number    types.IssueNumber `json:"number"`
	Milestone string            `json:"milestone"`
	Title     string            `json:"title"`
	State     string            `json:"state"`
	Weight    int               `json:"weight"`
	Source    string            `json:"source,omitempty"`
}

// URL returns the tracker URL of the issue. Issues without a recorded source
// are assumed to come from github.com.
func (i ReportIssue) URL() string {
	base := "https://github.com"
	if i.Source != "" {
		base = "https://" + i.Source
	}
	return fmt.Sprintf("%s/%s/%s/issues/%s", base, i.Org, i.Repo, i.Number)
}

// MilestoneReport is the computed burndown of one logical milestone: a dense
// daily open-count series and the issues counted into it.
type MilestoneReport struct {
	Name   string        `json:"name"`
	Days   DaySeries     `json:"days"`
	Issues []ReportIssue `json:"issues"`
}

// sourceKey identifies one (org, repo, tracker-local milestone) series
type sourceKey struct {
	org       types.OrgName
	repo      types.RepoName
	milestone types.MilestoneName
}

// Compute runs the full burndown pipeline over an issue snapshot: per
// repository it resolves milestone aliases and rebuilds each issue's
// membership timeline, accumulates signed points into per-milestone day
// series, then merges the series of each declared logical milestone with
// forward-fill. Reports come back in declaration order. Series for
// (repo, milestone) pairs no declaration references are dropped.
//
// The computation is a pure function of the snapshot and the declarations;
// neither input is mutated.
func Compute(ctx context.Context, snap model.Snapshot, cfg *model.MilestonesConfig) []*MilestoneReport {
	seriesByKey := make(map[sourceKey]DaySeries)
	issuesByKey := make(map[sourceKey][]ReportIssue)

	for _, org := range sortedOrgs(snap) {
		repos := snap[org]
		for _, repo := range sortedRepos(repos) {
			issues := repos[repo]
			aliases := BuildAliasTable(ctx, issues)

			pointsByMilestone := make(map[types.MilestoneName][]Point)
			for _, num := range issues.SortedNumbers() {
				issue := issues[num]
				if issue.IsPR {
					continue
				}

				for name, pts := range issuePoints(issue, aliases) {
					pointsByMilestone[name] = append(pointsByMilestone[name], pts...)
					key := sourceKey{org: org, repo: repo, milestone: name}
					issuesByKey[key] = append(issuesByKey[key], ReportIssue{
						Org:    org,
						Repo:   repo,
						Number: num,
						Title:  issue.Title,
						State:  issue.State,
						Weight: issue.Weight,
						Source: issue.Source,
					})
				}
			}

			for name, pts := range pointsByMilestone {
				key := sourceKey{org: org, repo: repo, milestone: name}
				seriesByKey[key] = Accumulate(pts)
			}
		}
	}

	reports := make([]*MilestoneReport, 0, len(cfg.Milestones))
	referenced := make(map[sourceKey]bool)

	for _, logical := range cfg.Milestones {
		report := &MilestoneReport{Name: logical.Name}

		for _, src := range logical.Sources {
			key := sourceKey{org: src.Org, repo: src.Repo, milestone: src.Milestone}
			referenced[key] = true

			report.Days = Merge(report.Days, seriesByKey[key])
			for _, issue := range issuesByKey[key] {
				issue.Milestone = logical.Name
				report.Issues = append(report.Issues, issue)
			}
		}

		reports = append(reports, report)
	}

	if dropped := len(seriesByKey) - countReferenced(seriesByKey, referenced); dropped > 0 {
		ctxlog.From(ctx).Debug("milestone series without logical milestone declaration",
			"dropped", dropped,
		)
	}

	return reports
}

func countReferenced(series map[sourceKey]DaySeries, referenced map[sourceKey]bool) int {
	n := 0
	for key := range series {
		if referenced[key] {
			n++
		}
	}
	return n
}

func sortedOrgs(snap model.Snapshot) []types.OrgName {
	orgs := make([]types.OrgName, 0, len(snap))
	for org := range snap {
		orgs = append(orgs, org)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i] < orgs[j] })
	return orgs
}

func sortedRepos(repos model.RepoIssues) []types.RepoName {
	names := make([]types.RepoName, 0, len(repos))
	for repo := range repos {
		names = append(names, repo)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
