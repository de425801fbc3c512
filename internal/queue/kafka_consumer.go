package queue

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaConsumer reads status events from a Kafka topic as part of a
// consumer group.
type KafkaConsumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewKafkaConsumer(brokers []string, groupID, topic string, log *zap.Logger) *KafkaConsumer {
	if topic == "" {
		topic = DefaultStatusQueue
	}
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}),
		log: log.With(zap.String("topic", topic)),
	}
}

// Consume blocks until ctx is cancelled.  Offsets are committed as messages
// are read; a message that fails to decode or handle is logged and skipped.
func (c *KafkaConsumer) Consume(ctx context.Context, handle Handler) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn("kafka read failed", zap.Error(err))
			if !sleep(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}
		if err := handleBody(ctx, m.Value, handle); err != nil {
			c.log.Warn("kafka handle message failed",
				zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

func (c *KafkaConsumer) Close() error { return c.reader.Close() }
