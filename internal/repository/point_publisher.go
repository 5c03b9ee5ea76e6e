package repository

import (
	"context"

	"ChainPulse/internal/domain/models"
	drepo "ChainPulse/internal/domain/repository"
	pkgkafka "ChainPulse/pkg/kafka"
)

// KafkaPointPublisher emits merged canonical points as one message per point,
// keyed by series so a partition preserves per-series order.
type KafkaPointPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPointPublisher(producer *pkgkafka.Producer, topic string) drepo.Publisher {
	return &KafkaPointPublisher{producer: producer, topic: topic}
}

func (p *KafkaPointPublisher) Publish(ctx context.Context, series string, pts []models.DataPoint) error {
	if len(pts) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(pts))
	for i, pt := range pts {
		msgs[i] = pkgkafka.Message{
			Key: []byte(series),
			Value: map[string]interface{}{
				"series": series,
				"ts":     pt.Timestamp.UnixMilli(),
				"count":  pt.Count,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPointPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
