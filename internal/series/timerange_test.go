package series

import (
	"testing"
	"time"

	"ChainPulse/internal/domain/models"
)

func TestFilterRange7dOn30dHistory(t *testing.T) {
	now := time.Date(2025, 5, 28, 12, 0, 0, 0, time.UTC)
	var pts []models.DataPoint
	for i := 0; i < 30; i++ {
		pts = append(pts, dp(now.AddDate(0, 0, -i), int64(i)))
	}

	got := FilterRange(pts, Range7d, now)
	if len(got) != 8 { // today plus 7 trailing days, boundary inclusive
		t.Fatalf("expected 8 points, got %d", len(got))
	}
	cutoff := now.Add(-7 * 24 * time.Hour)
	for _, p := range got {
		if p.Timestamp.Before(cutoff) || p.Timestamp.After(now) {
			t.Fatalf("point outside window: %v", p.Timestamp)
		}
	}
}

func TestFilterRangeAllCopies(t *testing.T) {
	now := time.Date(2025, 5, 28, 12, 0, 0, 0, time.UTC)
	pts := []models.DataPoint{dp(now.AddDate(0, 0, -400), 1), dp(now, 2)}

	got := FilterRange(pts, RangeAll, now)
	if len(got) != len(pts) {
		t.Fatalf("expected full history, got %d", len(got))
	}
	got[0].Count = 99
	if pts[0].Count == 99 {
		t.Fatalf("filter aliased the input slice")
	}
}

func TestFilterRangeEmptyInput(t *testing.T) {
	now := time.Date(2025, 5, 28, 12, 0, 0, 0, time.UTC)
	if got := FilterRange([]models.DataPoint(nil), Range7d, now); len(got) != 0 {
		t.Fatalf("expected empty output, got %d", len(got))
	}
}

func TestFilterRangeNoPointsInWindow(t *testing.T) {
	now := time.Date(2025, 5, 28, 12, 0, 0, 0, time.UTC)
	pts := []models.DataPoint{dp(now.AddDate(0, 0, -60), 1)}
	if got := FilterRange(pts, Range7d, now); len(got) != 0 {
		t.Fatalf("expected empty output, got %d", len(got))
	}
}
