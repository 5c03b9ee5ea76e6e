package series

import (
	"testing"
	"time"

	"ChainPulse/internal/domain/models"
)

var testNow = time.Date(2025, 5, 28, 16, 30, 0, 0, time.UTC)

func dp(t time.Time, c int64) models.DataPoint {
	return models.DataPoint{Timestamp: t, Count: c}
}

func TestReconcileDedupesSameDay(t *testing.T) {
	day := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	pts := []models.DataPoint{
		dp(day.Add(9*time.Hour), 1),
		dp(day.Add(18*time.Hour), 2),
		dp(day.Add(12*time.Hour), 3),
	}

	got := Reconcile(pts, Daily, testNow)
	if len(got) != 1 {
		t.Fatalf("expected 1 point, got %d", len(got))
	}
	if got[0].Count != 2 {
		t.Fatalf("expected latest snapshot to win, got count %d", got[0].Count)
	}
}

func TestReconcileRefetchReplacesEqualTimestamp(t *testing.T) {
	day := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	pts := []models.DataPoint{dp(day, 7), dp(day, 9)}

	got := Reconcile(pts, Daily, testNow)
	if len(got) != 1 || got[0].Count != 9 {
		t.Fatalf("expected later-seen snapshot to win, got %+v", got)
	}
}

func TestReconcileKeepsTodayMidnightAndLatest(t *testing.T) {
	midnight := time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC)
	pts := []models.DataPoint{
		dp(midnight.Add(14*time.Hour), 20),
		dp(midnight, 10),
		dp(midnight.Add(9*time.Hour), 15),
	}

	got := Reconcile(pts, Daily, testNow)
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(midnight) || got[0].Count != 10 {
		t.Fatalf("expected midnight snapshot first, got %+v", got[0])
	}
	if got[1].Count != 20 {
		t.Fatalf("expected latest intra-day snapshot, got %+v", got[1])
	}
}

func TestReconcileTodayWithoutMidnight(t *testing.T) {
	base := time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC)
	pts := []models.DataPoint{
		dp(base.Add(8*time.Hour), 1),
		dp(base.Add(11*time.Hour), 2),
	}

	got := Reconcile(pts, Daily, testNow)
	if len(got) != 1 {
		t.Fatalf("expected 1 point, got %d", len(got))
	}
	if got[0].Count != 2 {
		t.Fatalf("expected latest intra-day point, got %+v", got[0])
	}
}

func TestReconcileSortsOutOfOrderInput(t *testing.T) {
	pts := []models.DataPoint{
		dp(time.Date(2025, 5, 22, 0, 0, 0, 0, time.UTC), 3),
		dp(time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), 1),
		dp(time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC), 2),
	}

	got := Reconcile(pts, Daily, testNow)
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatalf("not sorted at %d: %v < %v", i, got[i].Timestamp, got[i-1].Timestamp)
		}
	}
}

func TestReconcileWeeklyBuckets(t *testing.T) {
	// Monday and Friday of the same Sunday-aligned week collapse into one.
	mon := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	fri := time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC)
	nextSun := time.Date(2025, 5, 18, 0, 0, 0, 0, time.UTC)
	pts := []models.DataPoint{dp(mon, 1), dp(fri, 2), dp(nextSun, 3)}

	got := Reconcile(pts, Weekly, testNow)
	if len(got) != 2 {
		t.Fatalf("expected 2 weekly points, got %d", len(got))
	}
	if got[0].Count != 2 || got[1].Count != 3 {
		t.Fatalf("unexpected retained points: %+v", got)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	midnight := time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC)
	pts := []models.DataPoint{
		dp(time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC), 1),
		dp(time.Date(2025, 5, 20, 20, 0, 0, 0, time.UTC), 2),
		dp(time.Date(2025, 5, 25, 0, 0, 0, 0, time.UTC), 3),
		dp(midnight, 4),
		dp(midnight.Add(14*time.Hour), 5),
	}

	once := Reconcile(pts, Daily, testNow)
	twice := Reconcile(once, Daily, testNow)
	if len(once) != len(twice) {
		t.Fatalf("length changed: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("point %d changed: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	pts := []models.DataPoint{
		dp(time.Date(2025, 5, 22, 0, 0, 0, 0, time.UTC), 3),
		dp(time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), 1),
	}
	snapshot := append([]models.DataPoint(nil), pts...)

	_ = Reconcile(pts, Daily, testNow)
	for i := range pts {
		if pts[i] != snapshot[i] {
			t.Fatalf("input mutated at %d", i)
		}
	}
}

func TestReconcileEmpty(t *testing.T) {
	if got := Reconcile([]models.DataPoint(nil), Daily, testNow); len(got) != 0 {
		t.Fatalf("expected empty output, got %d", len(got))
	}
}
