package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ChainPulse/internal/domain/models"
	drepo "ChainPulse/internal/domain/repository"
	xlogger "ChainPulse/pkg/logger"
)

// PointMessage is the wire shape of one published canonical point.
type PointMessage struct {
	Series string `json:"series"`
	TS     int64  `json:"ts"`
	Count  int64  `json:"count"`
}

// KafkaPointsHandler consumes canonical points mirrored by another instance
// and writes them to the archive. Registered on the consumer only in mirror
// mode.
type KafkaPointsHandler struct {
	topic   string
	archive drepo.Archive
	metrics drepo.Metrics
	logger  *xlogger.Logger
}

func NewKafkaPointsHandler(topic string, archive drepo.Archive, metrics drepo.Metrics, logger *xlogger.Logger) *KafkaPointsHandler {
	return &KafkaPointsHandler{topic: topic, archive: archive, metrics: metrics, logger: logger}
}

func (h *KafkaPointsHandler) Topic() string { return h.topic }

func (h *KafkaPointsHandler) Handle(ctx context.Context, data []byte) error {
	var m PointMessage
	if err := json.Unmarshal(data, &m); err != nil {
		h.metrics.RecordError("mirror_decode")
		return fmt.Errorf("decode point message: %w", err)
	}
	if m.Series == "" {
		h.metrics.RecordError("mirror_decode")
		return fmt.Errorf("point message without series")
	}

	pt := models.DataPoint{Timestamp: time.UnixMilli(m.TS).UTC(), Count: m.Count}
	if err := h.archive.Store(ctx, m.Series, []models.DataPoint{pt}); err != nil {
		h.metrics.RecordError("mirror_store")
		return fmt.Errorf("archive mirrored point: %w", err)
	}

	h.logger.Debug("mirrored point archived",
		xlogger.String("series", m.Series),
		xlogger.Int64("ts", m.TS),
	)
	return nil
}
