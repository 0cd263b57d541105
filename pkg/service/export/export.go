package export

import (
	"sort"

	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
)

// issueRow pairs one issue with its origin for flat listings
type issueRow struct {
	org    types.OrgName
	repo   types.RepoName
	number types.IssueNumber
	issue  *model.Issue
}

// issueRows flattens a snapshot into sorted rows, excluding pull requests
func issueRows(snap model.Snapshot) []issueRow {
	var rows []issueRow
	for org, repos := range snap {
		for repo, issues := range repos {
			for num, issue := range issues {
				if issue.IsPR {
					continue
				}
				rows = append(rows, issueRow{org: org, repo: repo, number: num, issue: issue})
			}
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].org != rows[j].org {
			return rows[i].org < rows[j].org
		}
		if rows[i].repo != rows[j].repo {
			return rows[i].repo < rows[j].repo
		}
		return rows[i].number < rows[j].number
	})

	return rows
}
