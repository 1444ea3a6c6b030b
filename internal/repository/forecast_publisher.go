package repository

import (
	"context"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
)

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaForecastPublisher emits forecast records as JSON keyed by ticker.
type KafkaForecastPublisher struct {
	producer MessagePublisher
	topic    string
}

// NewKafkaForecastPublisher creates a publisher for topic.
func NewKafkaForecastPublisher(producer MessagePublisher, topic string) *KafkaForecastPublisher {
	return &KafkaForecastPublisher{producer: producer, topic: topic}
}

func (p *KafkaForecastPublisher) Record(ctx context.Context, r *models.ForecastRecord) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Ticker), r)
}

func (p *KafkaForecastPublisher) Name() string { return "kafka" }

func (p *KafkaForecastPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopSink discards records.
type NoopSink struct{}

func (NoopSink) Record(context.Context, *models.ForecastRecord) error { return nil }

func (NoopSink) Name() string { return "none" }

func (NoopSink) Close() error { return nil }

var (
	_ domrepo.ForecastSink = (*KafkaForecastPublisher)(nil)
	_ domrepo.ForecastSink = NoopSink{}
)
