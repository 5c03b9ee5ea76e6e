package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ChainPulse/internal/service/cache"
	xhttp "ChainPulse/pkg/http"
)

func tagServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestTagCountSourceParsesDayMap(t *testing.T) {
	srv := tagServer(t, `{"Messages":[{"Tags":[{"name":"Daily-Counts","value":"{\"20236\":42,\"20237\":7}"}],"Data":""}]}`)
	defer srv.Close()

	s := NewTagCountSource("tx", srv.URL, "proc-1", "Get-Stats", "Daily-Counts",
		xhttp.NewClient(), cache.NewTTLCache(), cache.TTLMedium, nopMetrics{}, newTestLogger(t))

	pts, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(pts) != 2 {
		t.Fatalf("expected 2 points, got %d", len(pts))
	}
	if pts[0].Timestamp.UnixMilli() != 1748390400000 {
		t.Fatalf("day 20236 converted to %d", pts[0].Timestamp.UnixMilli())
	}
	if pts[0].Count != 42 || pts[1].Count != 7 {
		t.Fatalf("unexpected counts: %+v", pts)
	}
}

func TestTagCountSourceMissingTag(t *testing.T) {
	srv := tagServer(t, `{"Messages":[{"Tags":[{"name":"Other","value":"x"}],"Data":""}]}`)
	defer srv.Close()

	s := NewTagCountSource("tx", srv.URL, "proc-1", "Get-Stats", "Daily-Counts",
		xhttp.NewClient(), cache.NewTTLCache(), cache.TTLMedium, nopMetrics{}, newTestLogger(t))

	_, err := s.Fetch(context.Background())
	if !errors.Is(err, ErrMissingTag) {
		t.Fatalf("expected ErrMissingTag, got %v", err)
	}
}

func TestTagCountSourceEmptyMessages(t *testing.T) {
	srv := tagServer(t, `{"Messages":[]}`)
	defer srv.Close()

	s := NewTagCountSource("tx", srv.URL, "proc-1", "Get-Stats", "Daily-Counts",
		xhttp.NewClient(), cache.NewTTLCache(), cache.TTLMedium, nopMetrics{}, newTestLogger(t))

	_, err := s.Fetch(context.Background())
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

func TestTagCategorySourceDefaultsMissingFields(t *testing.T) {
	srv := tagServer(t, `{"Messages":[{"Tags":[{"name":"Supply","value":"{\"20226\":{\"low\":1,\"total\":10}}"}],"Data":""}]}`)
	defer srv.Close()

	s := NewTagCategorySource("supply", srv.URL, "proc-2", "Get-Supply", "Supply",
		xhttp.NewClient(), cache.NewTTLCache(), cache.TTLLong, nopMetrics{}, newTestLogger(t))

	pts, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(pts) != 1 {
		t.Fatalf("expected 1 point, got %d", len(pts))
	}
	p := pts[0]
	if p.Low != 1 || p.Medium != 0 || p.High != 0 || p.Total != 10 {
		t.Fatalf("missing categories must default to zero: %+v", p)
	}
}

func TestTagCountSourceUsesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Messages":[{"Tags":[{"name":"Daily-Counts","value":"{\"20226\":1}"}],"Data":""}]}`))
	}))
	defer srv.Close()

	s := NewTagCountSource("tx", srv.URL, "proc-1", "Get-Stats", "Daily-Counts",
		xhttp.NewClient(), cache.NewTTLCache(), 5*time.Minute, nopMetrics{}, newTestLogger(t))

	if _, err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits)
	}
}
