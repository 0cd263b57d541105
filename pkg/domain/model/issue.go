package model

import (
	"regexp"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/domain/types"
)

// TimeFormat is the timestamp layout used across snapshots. Both GitHub and
// GitLab payloads are normalized to second precision UTC at import time.
const TimeFormat = "2006-01-02T15:04:05Z"

// Timestamp is a second-precision UTC timestamp serialized in TimeFormat.
type Timestamp struct {
	time.Time
}

// NewTimestamp creates a Timestamp truncated to second precision in UTC
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC().Truncate(time.Second)}
}

// ParseTimestamp parses a snapshot timestamp string. A malformed timestamp
// is a fatal input-format error and propagates to the caller.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(TimeFormat, s)
	if err != nil {
		return Timestamp{}, goerr.Wrap(err, "malformed timestamp", goerr.V("value", s))
	}
	return Timestamp{t}, nil
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.UTC().Format(TimeFormat))), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return goerr.Wrap(err, "timestamp is not a JSON string", goerr.V("value", string(data)))
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Date returns the calendar day of the timestamp (UTC midnight)
func (t Timestamp) Date() time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EventKind is the lifecycle event type recorded by a tracker
type EventKind string

const (
	EventMilestoned   EventKind = "milestoned"
	EventDemilestoned EventKind = "demilestoned"
	EventLabeled      EventKind = "labeled"
	EventUnlabeled    EventKind = "unlabeled"
)

// IsMilestoneChange reports whether the event adds or removes a milestone
func (k EventKind) IsMilestoneChange() bool {
	return k == EventMilestoned || k == EventDemilestoned
}

// Event is one lifecycle event of an issue. Only milestoned/demilestoned
// events participate in burndown computation; labeled/unlabeled are kept
// for completeness of the snapshot.
type Event struct {
	CreatedAt Timestamp            `json:"created_at"`
	Kind      EventKind            `json:"event"`
	Milestone *types.MilestoneName `json:"milestone"`
	Label     *string              `json:"label"`
}

// Issue states as reported by trackers
const (
	IssueStateOpen   = "open"
	IssueStateClosed = "closed"
)

// Issue is one tracker issue as stored in the snapshot. All fields are
// read-only inputs to the burndown core.
type Issue struct {
	Source          string               `json:"source,omitempty"`
	Title           string               `json:"title"`
	CreatedAt       Timestamp            `json:"created_at"`
	UpdatedAt       Timestamp            `json:"updated_at"`
	ClosedAt        *Timestamp           `json:"closed_at"`
	State           string               `json:"state"`
	IsPR            bool                 `json:"is_pr"`
	Labels          []string             `json:"labels"`
	Milestone       *types.MilestoneName `json:"milestone"`
	MilestoneNumber int                  `json:"milestone_number,omitempty"`
	Events          []Event              `json:"events"`
	Weight          int                  `json:"weight,omitempty"`
}

// IsClosed reports whether the issue has a closure timestamp
func (i *Issue) IsClosed() bool {
	return i.ClosedAt != nil
}

var (
	titleWeightRe = regexp.MustCompile(`^\[(\d+)pt\]`)
	labelWeightRe = regexp.MustCompile(`^(\d+)pt$`)
)

// DeriveWeight extracts an issue weight from a "[Npt]" title prefix or an
// "Npt" label. Weight is informational only and defaults to 1.
func DeriveWeight(title string, labels []string) int {
	if m := titleWeightRe.FindStringSubmatch(title); m != nil {
		if w, err := strconv.Atoi(m[1]); err == nil {
			return w
		}
	}

	for _, label := range labels {
		if m := labelWeightRe.FindStringSubmatch(label); m != nil {
			if w, err := strconv.Atoi(m[1]); err == nil {
				return w
			}
		}
	}

	return 1
}
