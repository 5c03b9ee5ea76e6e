package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ChainPulse/internal/domain/models"
	"ChainPulse/internal/service/cache"
	xhttp "ChainPulse/pkg/http"
)

func countServer(t *testing.T, count int64, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"transactions": map[string]any{"count": count}},
		})
	}))
}

func testPeriods(n int) []models.Period {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Period, n)
	for i := range out {
		from := base.AddDate(0, 0, i)
		out[i] = models.Period{From: from, To: from.AddDate(0, 0, 1)}
	}
	return out
}

func TestFetchPeriodsChunking(t *testing.T) {
	var requests atomic.Int64
	srv := countServer(t, 9, &requests)
	defer srv.Close()

	s := NewGraphQLCountSource("tx", srv.URL, "transactions", 30,
		xhttp.NewClient(), cache.NewTTLCache(), cache.TTLShort, nopMetrics{}, newTestLogger(t))
	var delays int
	s.sleep = func(d time.Duration) {
		if d != batchChunkDelay {
			t.Fatalf("unexpected delay %v", d)
		}
		delays++
	}
	s.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	pts := s.FetchPeriods(context.Background(), testPeriods(12))
	if len(pts) != 12 {
		t.Fatalf("expected 12 points, got %d", len(pts))
	}
	if got := requests.Load(); got != 12 {
		t.Fatalf("expected 12 upstream requests, got %d", got)
	}
	// 12 periods -> chunks of 5,5,2 -> delay after the first two chunks only
	if delays != 2 {
		t.Fatalf("expected 2 inter-chunk delays, got %d", delays)
	}
	for i, p := range pts {
		if p.Count != 9 {
			t.Fatalf("point %d: expected count 9, got %d", i, p.Count)
		}
	}
}

func TestFetchPeriodsFailureYieldsZeroPoint(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "min: 1746230400") { // 2025-05-03
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"transactions": map[string]any{"count": 4}},
		})
	}))
	defer srv.Close()

	s := NewGraphQLCountSource("tx", srv.URL, "transactions", 30,
		xhttp.NewClient(), cache.NewTTLCache(), cache.TTLShort, nopMetrics{}, newTestLogger(t))
	s.sleep = func(time.Duration) {}
	s.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	periods := testPeriods(5)
	pts := s.FetchPeriods(context.Background(), periods)
	if len(pts) != 5 {
		t.Fatalf("expected 5 points, got %d", len(pts))
	}
	for _, p := range pts {
		want := int64(4)
		if p.Timestamp.Equal(time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)) {
			want = 0
		}
		if p.Count != want {
			t.Fatalf("period %v: expected %d, got %d", p.Timestamp, want, p.Count)
		}
	}
}

func TestFetchPeriodsGraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors":[{"message":"rate limited"}]}`))
	}))
	defer srv.Close()

	s := NewGraphQLCountSource("tx", srv.URL, "transactions", 30,
		xhttp.NewClient(), cache.NewTTLCache(), cache.TTLShort, nopMetrics{}, newTestLogger(t))
	s.sleep = func(time.Duration) {}

	pts := s.FetchPeriods(context.Background(), testPeriods(1))
	if len(pts) != 1 || pts[0].Count != 0 {
		t.Fatalf("expected zero point on graphql error, got %+v", pts)
	}
}

func TestFetchPeriodsCachesClosedDays(t *testing.T) {
	var requests atomic.Int64
	srv := countServer(t, 2, &requests)
	defer srv.Close()

	s := NewGraphQLCountSource("tx", srv.URL, "transactions", 30,
		xhttp.NewClient(), cache.NewTTLCache(), cache.TTLShort, nopMetrics{}, newTestLogger(t))
	s.sleep = func(time.Duration) {}
	s.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	periods := testPeriods(3)
	_ = s.FetchPeriods(context.Background(), periods)
	_ = s.FetchPeriods(context.Background(), periods)
	if got := requests.Load(); got != 3 {
		t.Fatalf("expected closed days to be served from cache, got %d requests", got)
	}
}

func TestDayPeriods(t *testing.T) {
	now := time.Date(2025, 5, 28, 15, 30, 0, 0, time.UTC)
	periods := DayPeriods(now, 3)
	if len(periods) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(periods))
	}
	if !periods[0].From.Equal(time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first period %+v", periods[0])
	}
	last := periods[2]
	if !last.From.Equal(time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC)) || !last.To.Equal(now) {
		t.Fatalf("current day must clip at now: %+v", last)
	}
}
