package stats

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/explore-events/pkg/kafka"
	"github.com/prohmpiriya/explore-events/pkg/logger"
	"go.uber.org/zap"
)

// DefaultHitTopic is the topic hits are published to
const DefaultHitTopic = "stats.hits"

// Producer is the part of kafka.Producer used for hits
type Producer interface {
	ProduceAsync(ctx context.Context, msg *kafka.Message, onDone func(error))
}

// KafkaHitRecorder publishes hits to a topic keyed by uri.
// Delivery is asynchronous; failures are logged.
type KafkaHitRecorder struct {
	producer Producer
	topic    string
}

// NewKafkaHitRecorder creates a recorder publishing to topic
func NewKafkaHitRecorder(producer Producer, topic string) *KafkaHitRecorder {
	if topic == "" {
		topic = DefaultHitTopic
	}
	return &KafkaHitRecorder{producer: producer, topic: topic}
}

// RecordHit enqueues the hit. Only encoding errors are returned.
func (r *KafkaHitRecorder) RecordHit(ctx context.Context, hit Hit) error {
	value, err := json.Marshal(toWireHit(hit))
	if err != nil {
		return fmt.Errorf("failed to encode hit: %w", err)
	}

	// Delivery outlives the request, so detach from its cancellation
	r.producer.ProduceAsync(context.WithoutCancel(ctx), &kafka.Message{
		Topic:   r.topic,
		Key:     []byte(hit.URI),
		Value:   value,
		Headers: map[string]string{"content-type": "application/json"},
	}, func(err error) {
		if err != nil {
			logger.Get().Warn("failed to deliver hit",
				zap.String("topic", r.topic),
				zap.String("uri", hit.URI),
				zap.Error(err),
			)
		}
	})
	return nil
}
