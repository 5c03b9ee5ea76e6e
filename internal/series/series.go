// Package series holds the pure time-series transforms: reconciliation of
// raw fetched points into canonical per-series history, trailing-window
// filtering, cross-series alignment, and chart payload construction.
// Everything here is synchronous and never mutates its input.
package series

import "time"

// Point is any observation carrying its instant. Both models.DataPoint and
// models.CategoryPoint satisfy it.
type Point interface {
	When() time.Time
}

// Granularity selects the dedupe bucket for non-today points.
type Granularity string

const (
	Daily  Granularity = "daily"
	Weekly Granularity = "weekly"
)

// Range is a trailing window over a canonical history.
type Range string

const (
	Range7d  Range = "7d"
	Range30d Range = "30d"
	Range90d Range = "90d"
	RangeAll Range = "all"
)

// Window returns the duration of a trailing range. ok is false for RangeAll
// and unrecognized values, which select the full history.
func (r Range) Window() (time.Duration, bool) {
	switch r {
	case Range7d:
		return 7 * 24 * time.Hour, true
	case Range30d:
		return 30 * 24 * time.Hour, true
	case Range90d:
		return 90 * 24 * time.Hour, true
	default:
		return 0, false
	}
}
