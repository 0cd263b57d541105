package burndown

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

// Point is one signed contribution to a milestone: an issue entering (+1)
// or leaving (-1) on a calendar day. Points sharing a day are summed.
type Point struct {
	Date  time.Time
	Delta int
}

// DaySeries is a dense, day-indexed running open count. It covers every
// calendar day from its start to its end inclusive; days without an event
// carry the previous day's total. Counts are kept in an array keyed by
// ordinal day offset from the start date, never by map iteration order.
type DaySeries struct {
	start  time.Time
	counts []int
}

// DayCount is one (day, running total) pair of a series
type DayCount struct {
	Date  time.Time
	Count int
}

const dayFormat = "2006-01-02"

// dateOf truncates a time to its UTC calendar day
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of calendar days from a to b. Both must be
// UTC midnights, so the division is exact.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// Accumulate converts a milestone's signed points into its burndown series.
// Points are summed per day and replaced by their running prefix sum, so the
// value on day D is the net open count as of end of D. An empty point set
// yields an empty series. Negative totals from inconsistent input are
// surfaced as-is.
func Accumulate(points []Point) DaySeries {
	if len(points) == 0 {
		return DaySeries{}
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	start := dateOf(sorted[0].Date)
	end := dateOf(sorted[len(sorted)-1].Date)
	counts := make([]int, daysBetween(start, end)+1)

	for _, p := range sorted {
		counts[daysBetween(start, dateOf(p.Date))] += p.Delta
	}

	acc := 0
	for i, delta := range counts {
		acc += delta
		counts[i] = acc
	}

	return DaySeries{start: start, counts: counts}
}

// IsEmpty reports whether the series has no days
func (s DaySeries) IsEmpty() bool {
	return len(s.counts) == 0
}

// Len returns the number of days covered
func (s DaySeries) Len() int {
	return len(s.counts)
}

// Start returns the first covered day
func (s DaySeries) Start() time.Time {
	return s.start
}

// End returns the last covered day
func (s DaySeries) End() time.Time {
	return s.start.AddDate(0, 0, len(s.counts)-1)
}

// At returns the running total on the given day if the day is covered
func (s DaySeries) At(day time.Time) (int, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	idx := daysBetween(s.start, dateOf(day))
	if idx < 0 || idx >= len(s.counts) {
		return 0, false
	}
	return s.counts[idx], true
}

// valueOn returns the forward-filled value on the given day: 0 before the
// series starts, the final total after it ends, the recorded total inside.
func (s DaySeries) valueOn(day time.Time) int {
	idx := daysBetween(s.start, day)
	switch {
	case idx < 0:
		return 0
	case idx >= len(s.counts):
		return s.counts[len(s.counts)-1]
	default:
		return s.counts[idx]
	}
}

// Days returns the series as ordered (day, total) pairs
func (s DaySeries) Days() []DayCount {
	days := make([]DayCount, len(s.counts))
	for i, count := range s.counts {
		days[i] = DayCount{
			Date:  s.start.AddDate(0, 0, i),
			Count: count,
		}
	}
	return days
}

// MarshalJSON renders the series as an ordered date→count object, the shape
// downstream exporters consume.
func (s DaySeries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, dc := range s.Days() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(dc.Date.Format(dayFormat))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(dc.Count)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
