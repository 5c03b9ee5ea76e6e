package series

import (
	"sort"
	"time"

	"ChainPulse/pkg/util"
)

// Reconcile turns a raw point sequence (unsorted, possibly holding several
// snapshots of the same calendar bucket) into canonical history:
//
//   - points on the current UTC day keep at most two entries: the exact
//     midnight snapshot, if present, and the single latest intra-day one;
//   - every other bucket (UTC day, or Sunday-aligned UTC week for weekly
//     series) keeps only its latest-timestamped point;
//   - the result is sorted ascending by timestamp.
//
// Applying Reconcile to its own output yields the same sequence.
func Reconcile[P Point](points []P, g Granularity, now time.Time) []P {
	if len(points) == 0 {
		return nil
	}

	var today, other []P
	for _, p := range points {
		if util.SameUTCDay(p.When(), now) {
			today = append(today, p)
		} else {
			other = append(other, p)
		}
	}

	latest := make(map[string]P, len(other))
	for _, p := range other {
		k := bucketKey(p.When(), g)
		// Ties go to the later-seen point so a re-fetch of the same
		// bucket replaces the stored value.
		if cur, ok := latest[k]; !ok || !p.When().Before(cur.When()) {
			latest[k] = p
		}
	}

	out := make([]P, 0, len(latest)+2)
	for _, p := range latest {
		out = append(out, p)
	}

	midnight := util.MidnightUTC(now)
	var mid, intra P
	var haveMid, haveIntra bool
	for _, p := range today {
		switch {
		case p.When().Equal(midnight):
			// A refetched midnight snapshot overwrites the earlier one.
			mid, haveMid = p, true
		case !haveIntra || !p.When().Before(intra.When()):
			intra, haveIntra = p, true
		}
	}
	if haveMid {
		out = append(out, mid)
	}
	if haveIntra {
		out = append(out, intra)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].When().Before(out[j].When())
	})
	return out
}

func bucketKey(t time.Time, g Granularity) string {
	if g == Weekly {
		return util.DayKeyUTC(util.WeekStartUTC(t))
	}
	return util.DayKeyUTC(t)
}
