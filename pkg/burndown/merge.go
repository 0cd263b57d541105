package burndown

// Merge combines two day series into one. The result spans from the earlier
// start to the later end of the two; each day's value is the sum of both
// series' forward-filled values on that day. A series that ended holds its
// final total for all later days, since no further events were recorded for
// it. Merging with an empty series returns the other unchanged, and the
// operation is commutative.
func Merge(lhs, rhs DaySeries) DaySeries {
	if lhs.IsEmpty() {
		return rhs
	}
	if rhs.IsEmpty() {
		return lhs
	}

	start := lhs.start
	if rhs.start.Before(start) {
		start = rhs.start
	}
	end := lhs.End()
	if rhs.End().After(end) {
		end = rhs.End()
	}

	counts := make([]int, daysBetween(start, end)+1)
	day := start
	for i := range counts {
		counts[i] = lhs.valueOn(day) + rhs.valueOn(day)
		day = day.AddDate(0, 0, 1)
	}

	return DaySeries{start: start, counts: counts}
}

// MergeAll folds a list of series with Merge, left to right. Merge is
// commutative, but the fold order is kept deterministic so callers get
// reproducible results.
func MergeAll(series []DaySeries) DaySeries {
	var merged DaySeries
	for _, s := range series {
		merged = Merge(merged, s)
	}
	return merged
}
