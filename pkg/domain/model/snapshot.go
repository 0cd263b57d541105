package model

import (
	"sort"

	"github.com/plan-lab/lignite/pkg/domain/types"
)

// epochFallback is the watermark used for repositories that have never been
// synced. Kept as a constant because trackers reject zero times.
const epochFallback = "1969-12-31T21:00:00Z"

// IssueSet holds one repository's issues keyed by tracker-local number
type IssueSet map[types.IssueNumber]*Issue

// RepoIssues holds one organization's repositories
type RepoIssues map[types.RepoName]IssueSet

// Snapshot is the full in-memory issue snapshot consumed by the burndown
// core, keyed org → repo → issue number.
type Snapshot map[types.OrgName]RepoIssues

// NewSnapshot creates an empty snapshot
func NewSnapshot() Snapshot {
	return Snapshot{}
}

// EnsureRepo returns the issue set for org/repo, creating intermediate maps
// as needed. Used by sync when merging fetched issues.
func (s Snapshot) EnsureRepo(org types.OrgName, repo types.RepoName) IssueSet {
	repos, ok := s[org]
	if !ok {
		repos = RepoIssues{}
		s[org] = repos
	}

	issues, ok := repos[repo]
	if !ok {
		issues = IssueSet{}
		repos[repo] = issues
	}

	return issues
}

// Clone returns a deep copy of the snapshot. Repositories hand out clones so
// callers never share mutable state with the store.
func (s Snapshot) Clone() Snapshot {
	out := NewSnapshot()
	for org, repos := range s {
		for repo, issues := range repos {
			dst := out.EnsureRepo(org, repo)
			for num, issue := range issues {
				issueCopy := *issue
				issueCopy.Labels = append([]string(nil), issue.Labels...)
				issueCopy.Events = append([]Event(nil), issue.Events...)
				if issue.ClosedAt != nil {
					closed := *issue.ClosedAt
					issueCopy.ClosedAt = &closed
				}
				if issue.Milestone != nil {
					ms := *issue.Milestone
					issueCopy.Milestone = &ms
				}
				dst[num] = &issueCopy
			}
		}
	}
	return out
}

// SortedNumbers returns the issue numbers in lexicographic order for
// deterministic iteration.
func (is IssueSet) SortedNumbers() []types.IssueNumber {
	numbers := make([]types.IssueNumber, 0, len(is))
	for num := range is {
		numbers = append(numbers, num)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	return numbers
}

// LastUpdated returns the latest updated_at across the set, or the epoch
// fallback for an empty set. Sync uses it as the incremental watermark.
func (is IssueSet) LastUpdated() Timestamp {
	var last Timestamp
	for _, issue := range is {
		if issue.UpdatedAt.After(last.Time) {
			last = issue.UpdatedAt
		}
	}

	if last.IsZero() {
		fallback, err := ParseTimestamp(epochFallback)
		if err != nil {
			panic(err) // constant layout, cannot fail
		}
		return fallback
	}

	return last
}
