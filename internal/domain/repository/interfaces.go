package repository

import (
	"context"
	"time"

	"ChainPulse/internal/domain/models"
)

// PointSource fetches raw observations for one single-valued series.
type PointSource interface {
	Series() string
	Fetch(ctx context.Context) ([]models.DataPoint, error)
}

// CategorySource fetches raw observations for one multi-category series.
type CategorySource interface {
	Series() string
	Fetch(ctx context.Context) ([]models.CategoryPoint, error)
}

// HistoryStore holds the canonical per-series histories in memory.
// Replace swaps the whole sequence reference; readers always see either the
// previous or the new sequence, never a partial write.
type HistoryStore interface {
	Points(key string) []models.DataPoint
	Categories(key string) []models.CategoryPoint
	ReplacePoints(key string, pts []models.DataPoint)
	ReplaceCategories(key string, pts []models.CategoryPoint)
	LastMerge(key string) (time.Time, bool)
}

// Publisher emits merged point updates to an external broker.
type Publisher interface {
	Publish(ctx context.Context, series string, pts []models.DataPoint) error
	Close() error
}

// Archive persists merged point updates for offline analysis. It never feeds
// back into the in-memory histories.
type Archive interface {
	Store(ctx context.Context, series string, pts []models.DataPoint) error
	Health(ctx context.Context) error
	Close() error
}

// ChartSink is the rendering collaborator: it receives busy flags around
// fetches and chart payloads after each merge. The core owns no UI state.
type ChartSink interface {
	SetBusy(series string, busy bool)
	UpdateChart(series string, chart models.ChartData)
}

// Metrics records operational counters.
type Metrics interface {
	RecordFetch(source, series string)
	RecordError(kind string)
	RecordBlockHeight(height int64)
	RecordMerged(series string, points int)
	RecordLatency(op string, seconds float64)
}
