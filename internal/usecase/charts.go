package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ChainPulse/internal/domain/models"
	drepo "ChainPulse/internal/domain/repository"
	"ChainPulse/internal/series"
	"ChainPulse/pkg/cache"
	xlogger "ChainPulse/pkg/logger"
	"ChainPulse/pkg/util"
)

var ErrUnknownSeries = errors.New("unknown series")

// ChartsUseCase renders canonical histories into chart payloads. Rendered
// payloads are cached in the payload cache (redis in front of the in-memory
// layer) and invalidated whenever the underlying series is refreshed.
type ChartsUseCase struct {
	store    drepo.HistoryStore
	catalog  *series.Catalog
	payloads cache.Service
	ttl      time.Duration
	logger   *xlogger.Logger
	now      func() time.Time
}

// NewChartsUseCase wires the renderer. payloads may be nil, which disables
// payload caching entirely.
func NewChartsUseCase(
	store drepo.HistoryStore,
	catalog *series.Catalog,
	payloads cache.Service,
	ttl time.Duration,
	logger *xlogger.Logger,
) *ChartsUseCase {
	return &ChartsUseCase{
		store:    store,
		catalog:  catalog,
		payloads: payloads,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Series lists the configured series in display order.
func (u *ChartsUseCase) Series() []models.SeriesInfo {
	return u.catalog.List()
}

// Chart renders one series over the requested range.
func (u *ChartsUseCase) Chart(ctx context.Context, key string, rng series.Range) (*models.ChartData, error) {
	if !u.catalog.Has(key) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSeries, key)
	}

	cacheKey := cache.GenerateKeyWithParams("chart", key, rng)
	if cd, ok := u.cached(ctx, cacheKey); ok {
		return cd, nil
	}

	var cd models.ChartData
	if u.catalog.Kind(key) == series.KindCategory {
		pts := series.FilterRange(u.store.Categories(key), rng, u.now())
		cd = series.BuildCategoryChart(u.catalog.Color(key), pts, series.DayLabel)
	} else {
		pts := series.FilterRange(u.store.Points(key), rng, u.now())
		cd = series.BuildPointChart(u.catalog.DisplayName(key), u.catalog.Color(key), pts, series.DayLabel)
	}

	u.remember(ctx, cacheKey, &cd)
	return &cd, nil
}

// Compare renders two point series on their union timeline. Category series
// have no single value to compare.
func (u *ChartsUseCase) Compare(ctx context.Context, a, b string, rng series.Range) (*models.ChartData, error) {
	for _, key := range []string{a, b} {
		if !u.catalog.Has(key) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSeries, key)
		}
		if u.catalog.Kind(key) != series.KindPoint {
			return nil, fmt.Errorf("series %s is not comparable", key)
		}
	}

	cacheKey := cache.GenerateKeyWithParams("chart:compare", a, b, rng)
	if cd, ok := u.cached(ctx, cacheKey); ok {
		return cd, nil
	}

	now := u.now()
	al := series.Align(
		series.FilterRange(u.store.Points(a), rng, now),
		series.FilterRange(u.store.Points(b), rng, now),
	)

	// Day labels would collapse two same-day observations taken at
	// different offsets into one ambiguous label, so fall back to full
	// instants when any point is off midnight.
	lf := series.LabelFunc(series.DayLabel)
	for _, t := range al.Timestamps {
		if !t.Equal(util.MidnightUTC(t)) {
			lf = series.InstantLabel
			break
		}
	}

	cd := series.BuildCompareChart(
		u.catalog.DisplayName(a), u.catalog.Color(a),
		u.catalog.DisplayName(b), u.catalog.Color(b),
		al, lf,
	)
	u.remember(ctx, cacheKey, &cd)
	return &cd, nil
}

// Invalidate drops every cached payload involving key, including compare
// charts that pair it with another series.
func (u *ChartsUseCase) Invalidate(ctx context.Context, key string) {
	if u.payloads == nil {
		return
	}
	if err := u.payloads.DeleteByPattern(ctx, fmt.Sprintf("chart:*%s*", key)); err != nil {
		u.logger.Warn("chart cache invalidation failed", xlogger.String("series", key), xlogger.Error(err))
	}
}

func (u *ChartsUseCase) cached(ctx context.Context, key string) (*models.ChartData, bool) {
	if u.payloads == nil {
		return nil, false
	}
	var cd models.ChartData
	if err := u.payloads.Get(ctx, key, &cd); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			u.logger.Warn("chart cache read failed", xlogger.String("key", key), xlogger.Error(err))
		}
		return nil, false
	}
	return &cd, true
}

func (u *ChartsUseCase) remember(ctx context.Context, key string, cd *models.ChartData) {
	if u.payloads == nil {
		return
	}
	if err := u.payloads.Set(ctx, key, cd, u.ttl); err != nil {
		u.logger.Warn("chart cache write failed", xlogger.String("key", key), xlogger.Error(err))
	}
}
