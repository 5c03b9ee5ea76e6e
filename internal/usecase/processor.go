package usecase

import (
	"context"
	"fmt"
	"time"

	"ChainPulse/internal/domain/models"
	drepo "ChainPulse/internal/domain/repository"
)

// Backend selection for merged point updates.
const (
	BackendNone       = "none"
	BackendKafka      = "kafka"
	BackendClickHouse = "clickhouse"
)

// PointProcessor routes merged canonical points to the configured backend.
// With BackendNone the histories stay purely in-memory.
type PointProcessor struct {
	pub     drepo.Publisher
	archive drepo.Archive
	metrics drepo.Metrics
	backend string
}

func NewPointProcessor(pub drepo.Publisher, archive drepo.Archive, metrics drepo.Metrics, backend string) *PointProcessor {
	if backend == "" {
		backend = BackendNone
	}
	return &PointProcessor{pub: pub, archive: archive, metrics: metrics, backend: backend}
}

// Process forwards one series' merged points.
func (p *PointProcessor) Process(ctx context.Context, series string, pts []models.DataPoint) error {
	if len(pts) == 0 {
		return nil
	}

	start := time.Now()
	var err error
	switch p.backend {
	case BackendNone:
		return nil
	case BackendKafka:
		err = p.pub.Publish(ctx, series, pts)
	case BackendClickHouse:
		err = p.archive.Store(ctx, series, pts)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("backend")
		return fmt.Errorf("process points: %w", err)
	}
	p.metrics.RecordLatency("backend", time.Since(start).Seconds())
	return nil
}

// Close releases backend resources.
func (p *PointProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.archive != nil {
		_ = p.archive.Close()
	}
}
