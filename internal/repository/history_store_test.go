package repository

import (
	"testing"
	"time"

	"ChainPulse/internal/domain/models"
)

func TestHistoryStoreReplaceAndRead(t *testing.T) {
	s := NewHistoryStore()
	if got := s.Points("tx"); got != nil {
		t.Fatalf("expected nil history for unknown key, got %v", got)
	}

	first := []models.DataPoint{{Timestamp: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), Count: 1}}
	s.ReplacePoints("tx", first)
	if got := s.Points("tx"); len(got) != 1 || got[0].Count != 1 {
		t.Fatalf("unexpected history %v", got)
	}

	second := []models.DataPoint{
		{Timestamp: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), Count: 1},
		{Timestamp: time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC), Count: 2},
	}
	s.ReplacePoints("tx", second)
	if got := s.Points("tx"); len(got) != 2 {
		t.Fatalf("replace did not swap the sequence: %v", got)
	}
}

func TestHistoryStoreLastMerge(t *testing.T) {
	s := NewHistoryStore()
	stamp := time.Date(2025, 5, 28, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return stamp }

	if _, ok := s.LastMerge("tx"); ok {
		t.Fatalf("expected no merge time before first replace")
	}
	s.ReplacePoints("tx", nil)
	got, ok := s.LastMerge("tx")
	if !ok || !got.Equal(stamp) {
		t.Fatalf("unexpected merge time %v ok=%v", got, ok)
	}
}

func TestHistoryStoreCategories(t *testing.T) {
	s := NewHistoryStore()
	pts := []models.CategoryPoint{{Timestamp: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), Total: 5}}
	s.ReplaceCategories("supply", pts)
	if got := s.Categories("supply"); len(got) != 1 || got[0].Total != 5 {
		t.Fatalf("unexpected categories %v", got)
	}
}
