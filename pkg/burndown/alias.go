package burndown

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
)

// AliasTable maps historical milestone names to their current canonical
// names within one repository. Trackers keep the name as it was at event
// time, so a renamed milestone appears in old events under its old name.
type AliasTable map[types.MilestoneName]types.MilestoneName

// Resolve substitutes a recorded name through the table, returning the name
// itself when no alias is known.
func (t AliasTable) Resolve(name types.MilestoneName) types.MilestoneName {
	if canonical, ok := t[name]; ok {
		return canonical
	}
	return name
}

// BuildAliasTable detects milestone renames within one repository. For every
// issue that currently has a milestone, its events are scanned newest first;
// the scan stops at the first demilestoned event, because anything before it
// belongs to a prior membership and must not be aliased to the current name.
// Every milestoned event seen up to that point whose recorded name differs
// from the current name registers recorded→current.
//
// The mapping must be a function; when two issues disagree on a recorded
// name's canonical target the later registration wins and the conflict is
// logged. Issues are visited in sorted number order so the outcome is
// deterministic.
func BuildAliasTable(ctx context.Context, issues model.IssueSet) AliasTable {
	table := AliasTable{}

	for _, num := range issues.SortedNumbers() {
		issue := issues[num]
		if issue.Milestone == nil {
			continue
		}
		current := *issue.Milestone

		for i := len(issue.Events) - 1; i >= 0; i-- {
			evt := issue.Events[i]
			if !evt.Kind.IsMilestoneChange() || evt.Milestone == nil {
				continue
			}
			if evt.Kind == model.EventDemilestoned {
				break
			}

			recorded := *evt.Milestone
			if recorded == current {
				continue
			}

			if existing, ok := table[recorded]; ok && existing != current {
				ctxlog.From(ctx).Warn("conflicting milestone alias, keeping latest",
					"recorded", recorded,
					"previous", existing,
					"canonical", current,
					"issue", num,
				)
			}
			table[recorded] = current
		}
	}

	return table
}
