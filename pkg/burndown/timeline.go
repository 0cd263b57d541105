package burndown

import (
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
)

// issuePoints reconstructs one issue's milestone membership intervals from
// its event log and converts them into signed points per canonical milestone
// name. An issue that was never milestoned contributes nothing.
//
// Membership rules:
//   - a milestoned event opens an interval and emits an entry point;
//   - a demilestoned event closes the matching interval; if the issue was
//     already closed inside the interval, the exit is backdated to the
//     closure day rather than the administrative event's day;
//   - a demilestoned event with no matching entry is ignored, the
//     membership may simply predate the observable window;
//   - an issue closed while still milestoned gets a synthetic exit on its
//     closure day, even though the tracker recorded no demilestone.
func issuePoints(issue *model.Issue, aliases AliasTable) map[types.MilestoneName][]Point {
	events := normalizeEvents(issue)
	if len(events) == 0 {
		return nil
	}

	points := make(map[types.MilestoneName][]Point)
	enteredAt := make(map[types.MilestoneName]model.Timestamp)
	var lastMilestone types.MilestoneName

	for _, evt := range events {
		name := aliases.Resolve(*evt.Milestone)

		switch evt.Kind {
		case model.EventMilestoned:
			enteredAt[name] = evt.CreatedAt
			lastMilestone = name
			points[name] = append(points[name], Point{Date: evt.CreatedAt.Date(), Delta: +1})

		case model.EventDemilestoned:
			lastMilestone = ""

			entered, ok := enteredAt[name]
			if !ok {
				continue
			}
			delete(enteredAt, name)

			exitDate := evt.CreatedAt.Date()
			if issue.ClosedAt != nil &&
				!issue.ClosedAt.Before(entered.Time) &&
				!issue.ClosedAt.After(evt.CreatedAt.Time) {
				// The issue was effectively closed before the demilestone
				// was recorded; the exit belongs on the closure day.
				exitDate = issue.ClosedAt.Date()
			}
			points[name] = append(points[name], Point{Date: exitDate, Delta: -1})
		}
	}

	// Closing an issue implicitly removes it from burndown accounting even
	// without an explicit demilestone event.
	if lastMilestone != "" && issue.ClosedAt != nil {
		points[lastMilestone] = append(points[lastMilestone],
			Point{Date: issue.ClosedAt.Date(), Delta: -1})
	}

	return points
}
