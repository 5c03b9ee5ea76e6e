package usecase

import (
	"context"
	"fmt"

	xlogger "ChainPulse/pkg/logger"
	"ChainPulse/pkg/queue"
)

// RefreshJobType is the queue message type for on-demand refreshes.
const RefreshJobType = "series.refresh"

// RefreshPayload names the series to refresh.
type RefreshPayload struct {
	Series string `json:"series"`
}

// RefreshJob drains on-demand refresh requests from the queue so that a
// burst of dashboard refresh clicks is serialized instead of hammering the
// upstreams.
type RefreshJob struct {
	collector *MetricsCollector
	logger    *xlogger.Logger
}

func NewRefreshJob(collector *MetricsCollector, logger *xlogger.Logger) *RefreshJob {
	return &RefreshJob{collector: collector, logger: logger}
}

func (j *RefreshJob) Name() string { return "refresh-series" }
func (j *RefreshJob) Type() string { return RefreshJobType }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RefreshPayload](payload)
	if err != nil {
		return fmt.Errorf("refresh payload: %w", err)
	}
	if p.Series == "" {
		return fmt.Errorf("refresh payload without series")
	}

	j.logger.Info("queued refresh", xlogger.String("series", p.Series))
	return j.collector.ForceRefresh(ctx, p.Series)
}
