package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ChainPulse/internal/domain/models"
	"ChainPulse/internal/repository"
	"ChainPulse/internal/series"
	"ChainPulse/internal/service/ratelimit"
	"ChainPulse/internal/usecase"
	xlogger "ChainPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

func newTestLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type testAPI struct {
	echo     *echo.Echo
	store    *repository.HistoryStore
	refreshN *int64
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := repository.NewHistoryStore()
	store.ReplacePoints("transactions", []models.DataPoint{
		{Timestamp: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), Count: 10},
		{Timestamp: time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC), Count: 20},
	})
	store.ReplacePoints("messages", []models.DataPoint{
		{Timestamp: time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC), Count: 5},
	})

	catalog := series.NewCatalog([]models.SeriesInfo{
		{Key: "transactions", DisplayName: "Transactions", Color: "chart-1", Kind: series.KindPoint},
		{Key: "messages", DisplayName: "Messages", Color: "chart-2", Kind: series.KindPoint},
	})
	logger := newTestLogger(t)
	charts := usecase.NewChartsUseCase(store, catalog, nil, 0, logger)

	var refreshN int64
	refresh := func(context.Context, string) error {
		atomic.AddInt64(&refreshN, 1)
		return nil
	}

	h := NewChartsHandler(charts, store, catalog, refresh, ratelimit.New(), logger)
	e := echo.New()
	h.RegisterRoutes(e)
	return &testAPI{echo: e, store: store, refreshN: &refreshN}
}

func (a *testAPI) do(t *testing.T, method, target string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body %s: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestListSeries(t *testing.T) {
	a := newTestAPI(t)
	code, body := a.do(t, http.MethodGet, "/api/series")
	if code != http.StatusOK || body["status"].(float64) != 200 {
		t.Fatalf("unexpected response %d %v", code, body)
	}
	rows := body["data"].([]interface{})
	if len(rows) != 2 {
		t.Fatalf("expected 2 series, got %v", rows)
	}
}

func TestGetChart(t *testing.T) {
	a := newTestAPI(t)
	_, body := a.do(t, http.MethodGet, "/api/charts/transactions?range=all")
	if body["status"].(float64) != 200 {
		t.Fatalf("unexpected response %v", body)
	}
	data := body["data"].(map[string]interface{})
	labels := data["labels"].([]interface{})
	if len(labels) != 2 || labels[0] != "2025-05-20" {
		t.Fatalf("unexpected labels %v", labels)
	}
}

func TestGetChartUnknownSeries(t *testing.T) {
	a := newTestAPI(t)
	_, body := a.do(t, http.MethodGet, "/api/charts/nope")
	if body["status"].(float64) != 404 {
		t.Fatalf("expected 404 status in body, got %v", body)
	}
}

func TestGetChartBadRange(t *testing.T) {
	a := newTestAPI(t)
	_, body := a.do(t, http.MethodGet, "/api/charts/transactions?range=2d")
	if body["status"].(float64) != 400 {
		t.Fatalf("expected validation error, got %v", body)
	}
}

func TestCompareCharts(t *testing.T) {
	a := newTestAPI(t)
	_, body := a.do(t, http.MethodGet, "/api/charts/compare?a=transactions&b=messages&range=all")
	if body["status"].(float64) != 200 {
		t.Fatalf("unexpected response %v", body)
	}
	data := body["data"].(map[string]interface{})
	datasets := data["datasets"].([]interface{})
	if len(datasets) != 2 {
		t.Fatalf("expected 2 datasets, got %v", datasets)
	}
}

func TestCompareRejectsSameSeries(t *testing.T) {
	a := newTestAPI(t)
	_, body := a.do(t, http.MethodGet, "/api/charts/compare?a=transactions&b=transactions")
	if body["status"].(float64) != 400 {
		t.Fatalf("expected validation error, got %v", body)
	}
}

func TestRefreshSeries(t *testing.T) {
	a := newTestAPI(t)
	_, body := a.do(t, http.MethodPost, "/api/refresh/transactions")
	if body["status"].(float64) != 200 {
		t.Fatalf("unexpected response %v", body)
	}
	if got := atomic.LoadInt64(a.refreshN); got != 1 {
		t.Fatalf("expected one refresh call, got %d", got)
	}
}

func TestRefreshRateLimit(t *testing.T) {
	a := newTestAPI(t)
	var last map[string]interface{}
	for i := 0; i < refreshBurst+1; i++ {
		_, last = a.do(t, http.MethodPost, "/api/refresh/transactions")
	}
	if last["status"].(float64) != float64(http.StatusTooManyRequests) {
		t.Fatalf("expected rate limit response, got %v", last)
	}
	if got := atomic.LoadInt64(a.refreshN); got != refreshBurst {
		t.Fatalf("expected %d refresh calls, got %d", refreshBurst, got)
	}
}

func TestStatus(t *testing.T) {
	a := newTestAPI(t)
	_, body := a.do(t, http.MethodGet, "/api/status")
	data := body["data"].(map[string]interface{})
	rows := data["series"].([]interface{})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %v", rows)
	}
	first := rows[0].(map[string]interface{})
	if first["key"] != "transactions" || first["points"].(float64) != 2 {
		t.Fatalf("unexpected row %v", first)
	}
}
