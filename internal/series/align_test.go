package series

import (
	"testing"
	"time"

	"ChainPulse/internal/domain/models"
)

func TestAlignDisjointTimestamps(t *testing.T) {
	t1 := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC)
	a := []models.DataPoint{dp(t1, 5)}
	b := []models.DataPoint{dp(t2, 3)}

	got := Align(a, b)
	if len(got.Timestamps) != 2 {
		t.Fatalf("expected 2 timeline points, got %d", len(got.Timestamps))
	}
	if !got.Timestamps[0].Equal(t1) || !got.Timestamps[1].Equal(t2) {
		t.Fatalf("timeline not sorted: %v", got.Timestamps)
	}
	if got.A[0] == nil || *got.A[0] != 5 || got.A[1] != nil {
		t.Fatalf("unexpected A values: %v", got.A)
	}
	if got.B[0] != nil || got.B[1] == nil || *got.B[1] != 3 {
		t.Fatalf("unexpected B values: %v", got.B)
	}
}

func TestAlignSharedTimestamps(t *testing.T) {
	t1 := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	a := []models.DataPoint{dp(t1, 5)}
	b := []models.DataPoint{dp(t1, 3)}

	got := Align(a, b)
	if len(got.Timestamps) != 1 {
		t.Fatalf("expected shared instant to merge, got %d points", len(got.Timestamps))
	}
	if *got.A[0] != 5 || *got.B[0] != 3 {
		t.Fatalf("unexpected values: A=%v B=%v", got.A, got.B)
	}
}

func TestAlignSameDayDifferentOffsetsStayDistinct(t *testing.T) {
	// Exact-instant equality only: same-day snapshots at different offsets
	// are separate timeline points.
	t1 := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(3 * time.Minute)
	got := Align([]models.DataPoint{dp(t1, 1)}, []models.DataPoint{dp(t2, 2)})
	if len(got.Timestamps) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got.Timestamps))
	}
}

func TestAlignEmptySides(t *testing.T) {
	got := Align(nil, nil)
	if len(got.Timestamps) != 0 || len(got.A) != 0 || len(got.B) != 0 {
		t.Fatalf("expected empty alignment, got %+v", got)
	}
}
