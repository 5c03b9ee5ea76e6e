package usecase

import (
	"context"
	"testing"
	"time"

	"ChainPulse/internal/domain/models"
	"ChainPulse/internal/repository"
)

func TestRefreshJobHandlesQueuedPayload(t *testing.T) {
	store := repository.NewHistoryStore()
	c := newTestCollector(t, store, newFakeSink())
	c.AddPointSource(&fakePointSource{key: "transactions", pts: []models.DataPoint{
		{Timestamp: day(20), Count: 1},
	}}, time.Minute)

	j := NewRefreshJob(c, newTestLogger(t))
	if got := j.Type(); got != RefreshJobType {
		t.Fatalf("unexpected job type %s", got)
	}

	payload := map[string]interface{}{"series": "transactions"}
	if err := j.Handle(context.Background(), payload); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := store.Points("transactions"); len(got) != 1 {
		t.Fatalf("expected refreshed history, got %v", got)
	}
}

func TestRefreshJobRejectsEmptySeries(t *testing.T) {
	j := NewRefreshJob(newTestCollector(t, repository.NewHistoryStore(), newFakeSink()), newTestLogger(t))
	if err := j.Handle(context.Background(), map[string]interface{}{}); err == nil {
		t.Fatalf("expected error for missing series")
	}
}
