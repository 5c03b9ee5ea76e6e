package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ChainPulse/internal/domain/models"
	drepo "ChainPulse/internal/domain/repository"
	"ChainPulse/internal/series"
	"ChainPulse/internal/service/ratelimit"
	"ChainPulse/internal/usecase"
	xhttp "ChainPulse/pkg/http"
	xlogger "ChainPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RefreshFunc triggers an on-demand refresh for one series. The wiring
// decides whether it enqueues a job or refreshes inline.
type RefreshFunc func(ctx context.Context, series string) error

// refresh endpoint budget per series
const (
	refreshBurst  = 3
	refreshPerSec = 0.2
)

// SeriesStatus is one row of the status endpoint.
type SeriesStatus struct {
	Key         string     `json:"key"`
	Kind        string     `json:"kind"`
	Granularity string     `json:"granularity"`
	Points      int        `json:"points"`
	LastMergeAt *time.Time `json:"lastMergeAt,omitempty"`
}

// StatusResponse reports per-series freshness and process uptime.
type StatusResponse struct {
	UptimeSeconds int64          `json:"uptimeSeconds"`
	Series        []SeriesStatus `json:"series"`
}

// ChartsHandler serves the dashboard API.
type ChartsHandler struct {
	charts  *usecase.ChartsUseCase
	store   drepo.HistoryStore
	catalog *series.Catalog
	refresh RefreshFunc
	limiter *ratelimit.Limiter
	logger  *xlogger.Logger
	started time.Time
}

func NewChartsHandler(
	charts *usecase.ChartsUseCase,
	store drepo.HistoryStore,
	catalog *series.Catalog,
	refresh RefreshFunc,
	limiter *ratelimit.Limiter,
	logger *xlogger.Logger,
) *ChartsHandler {
	return &ChartsHandler{
		charts:  charts,
		store:   store,
		catalog: catalog,
		refresh: refresh,
		limiter: limiter,
		logger:  logger,
		started: time.Now(),
	}
}

// RegisterRoutes registers API routes.
func (h *ChartsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/series", h.ListSeries)
	g.GET("/charts/compare", h.CompareCharts)
	g.GET("/charts/:series", h.GetChart)
	g.POST("/refresh/:series", h.RefreshSeries)
	g.GET("/status", h.Status)
}

// ListSeries returns the configured series catalog.
func (h *ChartsHandler) ListSeries(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.charts.Series())
}

// GetChart renders one series over the requested range.
func (h *ChartsHandler) GetChart(c echo.Context) error {
	var req models.ChartRequest
	if errs := xhttp.ReadAndValidateRequest(c, &req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	cd, err := h.charts.Chart(c.Request().Context(), req.Series, series.Range(req.Range))
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownSeries) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown series: %s", req.Series))
		}
		h.logger.Error("chart render failed", xlogger.String("series", req.Series), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, cd)
}

// CompareCharts renders two series on a shared timeline.
func (h *ChartsHandler) CompareCharts(c echo.Context) error {
	var req models.CompareRequest
	if errs := xhttp.ReadAndValidateRequest(c, &req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	cd, err := h.charts.Compare(c.Request().Context(), req.A, req.B, series.Range(req.Range))
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownSeries) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
		}
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, cd)
}

// RefreshSeries forces a refetch of one series, rate limited per key.
func (h *ChartsHandler) RefreshSeries(c echo.Context) error {
	var req models.RefreshRequest
	if errs := xhttp.ReadAndValidateRequest(c, &req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	if !h.catalog.Has(req.Series) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown series: %s", req.Series))
	}
	if !h.limiter.Allow("refresh:"+req.Series, refreshBurst, refreshPerSec) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError(
			"ERR_RATE_LIMITED", "", "refresh rate limit exceeded", http.StatusTooManyRequests))
	}

	if err := h.refresh(c.Request().Context(), req.Series); err != nil {
		h.logger.Error("manual refresh failed", xlogger.String("series", req.Series), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, map[string]string{"series": req.Series, "state": "refreshing"})
}

// Status reports per-series freshness.
func (h *ChartsHandler) Status(c echo.Context) error {
	infos := h.catalog.List()
	rows := make([]SeriesStatus, 0, len(infos))
	for _, si := range infos {
		row := SeriesStatus{
			Key:         si.Key,
			Kind:        h.catalog.Kind(si.Key),
			Granularity: string(h.catalog.Granularity(si.Key)),
		}
		if row.Kind == series.KindCategory {
			row.Points = len(h.store.Categories(si.Key))
		} else {
			row.Points = len(h.store.Points(si.Key))
		}
		if at, ok := h.store.LastMerge(si.Key); ok {
			t := at
			row.LastMergeAt = &t
		}
		rows = append(rows, row)
	}

	return xhttp.SuccessResponse(c, StatusResponse{
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Series:        rows,
	})
}
