package series

import (
	"sort"
	"time"

	"ChainPulse/internal/domain/models"
)

// Aligned re-expresses two histories over the sorted union of their
// timestamps. A and B carry nil where that series has no observation at the
// timeline point. Alignment is recomputed per request and never stored.
type Aligned struct {
	Timestamps []time.Time
	A          []*float64
	B          []*float64
}

// Align merges two range-filtered histories onto one shared timeline.
// Timestamps match by exact instant only: two sources snapshotting "the same
// day" at different wall-clock offsets stay distinct timeline points.
func Align(a, b []models.DataPoint) Aligned {
	byA := make(map[int64]float64, len(a))
	byB := make(map[int64]float64, len(b))
	union := make(map[int64]time.Time, len(a)+len(b))

	for _, p := range a {
		byA[p.Timestamp.UnixNano()] = float64(p.Count)
		union[p.Timestamp.UnixNano()] = p.Timestamp
	}
	for _, p := range b {
		byB[p.Timestamp.UnixNano()] = float64(p.Count)
		union[p.Timestamp.UnixNano()] = p.Timestamp
	}

	keys := make([]int64, 0, len(union))
	for k := range union {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := Aligned{
		Timestamps: make([]time.Time, 0, len(keys)),
		A:          make([]*float64, 0, len(keys)),
		B:          make([]*float64, 0, len(keys)),
	}
	for _, k := range keys {
		out.Timestamps = append(out.Timestamps, union[k])
		out.A = append(out.A, valueAt(byA, k))
		out.B = append(out.B, valueAt(byB, k))
	}
	return out
}

func valueAt(m map[int64]float64, k int64) *float64 {
	if v, ok := m[k]; ok {
		return &v
	}
	return nil
}
