package domain

import "time"

// Interval is a half-open [Start, End) time range. A nil End means the interval
// is unbounded. Both membership periods and reservations are intervals.
type Interval struct {
	Start time.Time
	End   *time.Time
}

// Overlap reports whether two half-open intervals intersect. Touching endpoints
// (a.End == b.Start) do not count as overlap; equal intervals do.
func Overlap(a, b Interval) bool {
	return a.Start.Before(effectiveEnd(b)) && b.Start.Before(effectiveEnd(a))
}

// Overlaps reports whether candidate overlaps any element of others.
// An empty others never overlaps.
func Overlaps(candidate Interval, others []Interval) bool {
	for _, o := range others {
		if Overlap(candidate, o) {
			return true
		}
	}
	return false
}

// farFuture stands in for +inf; time.Time has no infinity and any real
// timestamp compares before this.
var farFuture = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

func effectiveEnd(iv Interval) time.Time {
	if iv.End == nil {
		return farFuture
	}
	return *iv.End
}
