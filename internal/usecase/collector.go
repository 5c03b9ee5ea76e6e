package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ChainPulse/internal/domain/models"
	drepo "ChainPulse/internal/domain/repository"
	"ChainPulse/internal/series"
	icache "ChainPulse/internal/service/cache"
	xlogger "ChainPulse/pkg/logger"
)

// MetricsCollector owns the poll loop: each configured series is refreshed
// on its own ticker, merged into the history store, and pushed to the chart
// sink. There is no cancellation of in-flight fetches; a later refresh for
// the same key simply overwrites the history when it resolves.
type MetricsCollector struct {
	points     map[string]drepo.PointSource
	categories map[string]drepo.CategorySource
	intervals  map[string]time.Duration
	store      drepo.HistoryStore
	proc       *PointProcessor
	sink       drepo.ChartSink
	charts     *ChartsUseCase
	catalog    *series.Catalog
	metrics    drepo.Metrics
	logger     *xlogger.Logger
	rcache     *icache.TTLCache
	now        func() time.Time

	wg sync.WaitGroup
}

func NewMetricsCollector(
	store drepo.HistoryStore,
	proc *PointProcessor,
	sink drepo.ChartSink,
	charts *ChartsUseCase,
	catalog *series.Catalog,
	metrics drepo.Metrics,
	logger *xlogger.Logger,
	rcache *icache.TTLCache,
) *MetricsCollector {
	return &MetricsCollector{
		points:     make(map[string]drepo.PointSource),
		categories: make(map[string]drepo.CategorySource),
		intervals:  make(map[string]time.Duration),
		store:      store,
		proc:       proc,
		sink:       sink,
		charts:     charts,
		catalog:    catalog,
		metrics:    metrics,
		logger:     logger,
		rcache:     rcache,
		now:        time.Now,
	}
}

// AddPointSource registers a single-valued series with its poll interval.
func (c *MetricsCollector) AddPointSource(src drepo.PointSource, every time.Duration) {
	c.points[src.Series()] = src
	c.intervals[src.Series()] = every
}

// AddCategorySource registers a multi-category series with its poll interval.
func (c *MetricsCollector) AddCategorySource(src drepo.CategorySource, every time.Duration) {
	c.categories[src.Series()] = src
	c.intervals[src.Series()] = every
}

// Start refreshes every series once, then launches one poll loop per series.
// It returns after the initial pass; loops run until ctx is cancelled.
func (c *MetricsCollector) Start(ctx context.Context) error {
	for key := range c.intervals {
		if err := c.Refresh(ctx, key); err != nil {
			// Degrade this chart only; the next tick is the retry.
			c.logger.Error("initial refresh failed", xlogger.String("series", key), xlogger.Error(err))
		}
	}
	for key, every := range c.intervals {
		c.wg.Add(1)
		go c.loop(ctx, key, every)
	}
	return nil
}

func (c *MetricsCollector) loop(ctx context.Context, key string, every time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx, key); err != nil {
				c.logger.Error("refresh failed", xlogger.String("series", key), xlogger.Error(err))
			}
		}
	}
}

// Wait blocks until all poll loops have exited.
func (c *MetricsCollector) Wait() { c.wg.Wait() }

// ForceRefresh drops all cached upstream responses and refetches key.
// Scheduled refreshes go through Refresh and keep serving within-TTL
// payloads; this is the user-triggered path.
func (c *MetricsCollector) ForceRefresh(ctx context.Context, key string) error {
	if c.rcache != nil {
		c.rcache.Clear()
	}
	return c.Refresh(ctx, key)
}

// Refresh runs one fetch/reconcile/store cycle for key. The busy flag is
// toggled around the whole cycle so the dashboard can drive its loader.
func (c *MetricsCollector) Refresh(ctx context.Context, key string) error {
	c.sink.SetBusy(key, true)
	defer c.sink.SetBusy(key, false)

	start := time.Now()
	var err error
	switch {
	case c.points[key] != nil:
		err = c.refreshPoints(ctx, key)
	case c.categories[key] != nil:
		err = c.refreshCategories(ctx, key)
	default:
		return fmt.Errorf("unknown series: %s", key)
	}
	if err != nil {
		return err
	}

	c.metrics.RecordLatency("refresh", time.Since(start).Seconds())
	c.charts.Invalidate(ctx, key)
	c.pushChart(ctx, key)
	return nil
}

func (c *MetricsCollector) refreshPoints(ctx context.Context, key string) error {
	raw, err := c.points[key].Fetch(ctx)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", key, err)
	}

	// Merge against the previously seen history; reconciliation owns the
	// dedupe of re-fetched buckets and the today special case. Prior points
	// go first so a re-fetched snapshot wins timestamp ties.
	combined := make([]models.DataPoint, 0, len(c.store.Points(key))+len(raw))
	combined = append(combined, c.store.Points(key)...)
	combined = append(combined, raw...)
	canonical := series.Reconcile(combined, c.catalog.Granularity(key), c.now())

	c.store.ReplacePoints(key, canonical)
	c.metrics.RecordMerged(key, len(canonical))

	if err := c.proc.Process(ctx, key, canonical); err != nil {
		// Backend trouble must not degrade the chart.
		c.logger.Warn("backend process failed", xlogger.String("series", key), xlogger.Error(err))
	}
	return nil
}

func (c *MetricsCollector) refreshCategories(ctx context.Context, key string) error {
	raw, err := c.categories[key].Fetch(ctx)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", key, err)
	}

	combined := make([]models.CategoryPoint, 0, len(c.store.Categories(key))+len(raw))
	combined = append(combined, c.store.Categories(key)...)
	combined = append(combined, raw...)
	canonical := series.Reconcile(combined, c.catalog.Granularity(key), c.now())

	c.store.ReplaceCategories(key, canonical)
	c.metrics.RecordMerged(key, len(canonical))
	return nil
}

func (c *MetricsCollector) pushChart(ctx context.Context, key string) {
	cd, err := c.charts.Chart(ctx, key, series.RangeAll)
	if err != nil {
		c.logger.Warn("chart push skipped", xlogger.String("series", key), xlogger.Error(err))
		return
	}
	c.sink.UpdateChart(key, *cd)
}
