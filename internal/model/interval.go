package model

import "time"

// Interval is a half-open time range [Start, End).  The end instant is
// excluded, which lets back-to-back reservations share a boundary without
// conflicting.  All instants are expected to be UTC.
type Interval struct {
	Start time.Time `json:"start_time"` // inclusive start of the range
	End   time.Time `json:"end_time"`   // exclusive end of the range
}

// NewInterval builds an Interval with both instants normalized to UTC.
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start.UTC(), End: end.UTC()}
}

// IsValid reports whether the interval is well formed, i.e. End is strictly
// after Start.  Zero-length and inverted ranges are invalid.
func (i Interval) IsValid() bool {
	return i.End.After(i.Start)
}

// Overlaps reports whether two intervals share at least one instant.  This
// is the single overlap predicate used by the availability checker and all
// conflict tests: a.Start < b.End && b.Start < a.End.  Intervals that only
// touch at a boundary (a.End == b.Start) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Duration returns the length of the interval.  Invalid intervals yield a
// non-positive duration.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}
