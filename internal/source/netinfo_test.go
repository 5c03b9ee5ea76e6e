package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ChainPulse/internal/service/cache"
	xhttp "ChainPulse/pkg/http"
)

func TestNetworkInfoSourceFetch(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"network":"mainnet","version":5,"height":1668000,"blocks":1668000,"peers":42}`))
	}))
	defer srv.Close()

	s := NewNetworkInfoSource("block-height", srv.URL, xhttp.NewClient(), cache.NewTTLCache(), cache.TTLVolatile, nopMetrics{}, newTestLogger(t))
	now := time.Date(2025, 5, 28, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	pts, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(pts) != 1 || pts[0].Count != 1668000 {
		t.Fatalf("unexpected points: %+v", pts)
	}
	if !pts[0].Timestamp.Equal(now) {
		t.Fatalf("unexpected timestamp %v", pts[0].Timestamp)
	}

	// second fetch is served from the response cache
	if _, err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits)
	}
}

func TestNetworkInfoSourceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewNetworkInfoSource("block-height", srv.URL, xhttp.NewClient(), cache.NewTTLCache(), cache.TTLVolatile, nopMetrics{}, newTestLogger(t))
	if _, err := s.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error on 503")
	}
}
