package series

import "time"

// FilterRange returns the points of a canonical history whose timestamps fall
// within [now - window, now]. RangeAll (and unknown ranges) return a copy of
// the full history. The input is never mutated; an empty input or an empty
// window yields an empty result, never an error.
func FilterRange[P Point](points []P, r Range, now time.Time) []P {
	window, ok := r.Window()
	if !ok {
		return append([]P(nil), points...)
	}

	cutoff := now.Add(-window)
	out := make([]P, 0, len(points))
	for _, p := range points {
		t := p.When()
		if !t.Before(cutoff) && !t.After(now) {
			out = append(out, p)
		}
	}
	return out
}
