package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ChainPulse/internal/domain/models"
	"ChainPulse/internal/repository"
	icache "ChainPulse/internal/service/cache"
)

type fakePointSource struct {
	key string
	pts []models.DataPoint
	err error
}

func (f *fakePointSource) Series() string { return f.key }
func (f *fakePointSource) Fetch(context.Context) ([]models.DataPoint, error) {
	return f.pts, f.err
}

type fakeCategorySource struct {
	key string
	pts []models.CategoryPoint
}

func (f *fakeCategorySource) Series() string { return f.key }
func (f *fakeCategorySource) Fetch(context.Context) ([]models.CategoryPoint, error) {
	return f.pts, nil
}

type fakeSink struct {
	mu     sync.Mutex
	busy   []bool
	charts map[string]models.ChartData
}

func newFakeSink() *fakeSink {
	return &fakeSink{charts: make(map[string]models.ChartData)}
}

func (s *fakeSink) SetBusy(series string, busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = append(s.busy, busy)
}

func (s *fakeSink) UpdateChart(series string, cd models.ChartData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charts[series] = cd
}

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)    {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordBlockHeight(int64)       {}
func (nopMetrics) RecordMerged(string, int)      {}
func (nopMetrics) RecordLatency(string, float64) {}

func newTestCollector(t *testing.T, store *repository.HistoryStore, sink *fakeSink) *MetricsCollector {
	t.Helper()
	catalog := testCatalog()
	charts := NewChartsUseCase(store, catalog, nil, 0, newTestLogger(t))
	charts.now = func() time.Time { return chartNow }

	proc := NewPointProcessor(nil, nil, nopMetrics{}, BackendNone)
	c := NewMetricsCollector(store, proc, sink, charts, catalog, nopMetrics{}, newTestLogger(t), icache.NewTTLCache())
	c.now = func() time.Time { return chartNow }
	return c
}

func TestRefreshMergesAndPushes(t *testing.T) {
	store := repository.NewHistoryStore()
	sink := newFakeSink()
	c := newTestCollector(t, store, sink)
	c.AddPointSource(&fakePointSource{key: "transactions", pts: []models.DataPoint{
		{Timestamp: day(20), Count: 10},
		{Timestamp: day(21), Count: 20},
	}}, time.Minute)

	if err := c.Refresh(context.Background(), "transactions"); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if got := store.Points("transactions"); len(got) != 2 {
		t.Fatalf("expected 2 canonical points, got %v", got)
	}
	if len(sink.busy) != 2 || !sink.busy[0] || sink.busy[1] {
		t.Fatalf("expected busy true then false, got %v", sink.busy)
	}
	cd, ok := sink.charts["transactions"]
	if !ok || len(cd.Labels) != 2 {
		t.Fatalf("expected chart push, got %+v", cd)
	}
}

func TestRefreshReplacesRestatedBucket(t *testing.T) {
	store := repository.NewHistoryStore()
	c := newTestCollector(t, store, newFakeSink())
	src := &fakePointSource{key: "transactions", pts: []models.DataPoint{{Timestamp: day(20), Count: 10}}}
	c.AddPointSource(src, time.Minute)

	ctx := context.Background()
	if err := c.Refresh(ctx, "transactions"); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	// The upstream restates day 20 and adds day 21; the restated value must
	// win over the stored one.
	src.pts = []models.DataPoint{
		{Timestamp: day(20), Count: 11},
		{Timestamp: day(21), Count: 20},
	}
	if err := c.Refresh(ctx, "transactions"); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	got := store.Points("transactions")
	if len(got) != 2 || got[0].Count != 11 || got[1].Count != 20 {
		t.Fatalf("unexpected merged history %v", got)
	}
}

func TestRefreshSourceErrorKeepsHistory(t *testing.T) {
	store := repository.NewHistoryStore()
	prior := []models.DataPoint{{Timestamp: day(20), Count: 10}}
	store.ReplacePoints("transactions", prior)

	sink := newFakeSink()
	c := newTestCollector(t, store, sink)
	c.AddPointSource(&fakePointSource{key: "transactions", err: errors.New("upstream down")}, time.Minute)

	if err := c.Refresh(context.Background(), "transactions"); err == nil {
		t.Fatalf("expected refresh error")
	}
	if got := store.Points("transactions"); len(got) != 1 || got[0].Count != 10 {
		t.Fatalf("history must survive a failed refresh, got %v", got)
	}
	if len(sink.busy) != 2 || sink.busy[1] {
		t.Fatalf("busy flag must clear after a failed refresh, got %v", sink.busy)
	}
}

func TestRefreshCategories(t *testing.T) {
	store := repository.NewHistoryStore()
	c := newTestCollector(t, store, newFakeSink())
	c.AddCategorySource(&fakeCategorySource{key: "supply", pts: []models.CategoryPoint{
		{Timestamp: day(20), Low: 1, Total: 4},
	}}, time.Minute)

	if err := c.Refresh(context.Background(), "supply"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := store.Categories("supply"); len(got) != 1 || got[0].Total != 4 {
		t.Fatalf("unexpected categories %v", got)
	}
}

func TestForceRefreshDropsResponseCache(t *testing.T) {
	store := repository.NewHistoryStore()
	c := newTestCollector(t, store, newFakeSink())
	c.AddPointSource(&fakePointSource{key: "transactions", pts: []models.DataPoint{
		{Timestamp: day(20), Count: 10},
	}}, time.Minute)
	c.rcache.Set("netinfo:transactions", int64(5), time.Hour)

	if err := c.ForceRefresh(context.Background(), "transactions"); err != nil {
		t.Fatalf("force refresh: %v", err)
	}
	if _, ok := c.rcache.Get("netinfo:transactions"); ok {
		t.Fatalf("expected response cache to be cleared")
	}
	if got := store.Points("transactions"); len(got) != 1 {
		t.Fatalf("expected refreshed history, got %v", got)
	}
}

func TestRefreshUnknownSeries(t *testing.T) {
	c := newTestCollector(t, repository.NewHistoryStore(), newFakeSink())
	if err := c.Refresh(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for unknown series")
	}
}

func TestProcessorBackendNone(t *testing.T) {
	p := NewPointProcessor(nil, nil, nopMetrics{}, BackendNone)
	err := p.Process(context.Background(), "transactions", []models.DataPoint{{Timestamp: day(20), Count: 1}})
	if err != nil {
		t.Fatalf("backend none must be a no-op, got %v", err)
	}
}

func TestProcessorUnknownBackend(t *testing.T) {
	p := NewPointProcessor(nil, nil, nopMetrics{}, "tape")
	err := p.Process(context.Background(), "transactions", []models.DataPoint{{Timestamp: day(20), Count: 1}})
	if err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
