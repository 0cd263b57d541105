package burndown

import "github.com/plan-lab/lignite/pkg/domain/model"

// normalizeEvents extracts the milestone-relevant sub-sequence of an issue's
// event log in original order. Events recorded strictly after the issue
// closed are discarded: a milestone change after closure cannot affect when
// the issue was open within the milestone. Events without a milestone name
// carry no membership information and are dropped as well.
func normalizeEvents(issue *model.Issue) []model.Event {
	var events []model.Event
	for _, evt := range issue.Events {
		if !evt.Kind.IsMilestoneChange() {
			continue
		}
		if evt.Milestone == nil {
			continue
		}
		if issue.ClosedAt != nil && evt.CreatedAt.After(issue.ClosedAt.Time) {
			continue
		}
		events = append(events, evt)
	}
	return events
}
