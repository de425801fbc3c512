// Package notify delivers reservation status events to the outside world.
// The engine calls a booking.Notifier after commit; this package provides
// the RabbitMQ, Kafka and log implementations and the webhook forwarder used
// by the notify-worker.
package notify

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/config"
)

var (
	_ booking.Notifier = (*AMQPPublisher)(nil)
	_ booking.Notifier = (*KafkaPublisher)(nil)
	_ booking.Notifier = (*LogNotifier)(nil)
	_ booking.Notifier = (*WebhookSender)(nil)
)

// New builds the notifier selected by cfg.Notify.Driver.  The "none" driver
// returns a nil notifier, which the engine treats as disabled.  Callers
// should close the result when it implements io.Closer.
func New(cfg *config.Config, log *zap.Logger) (booking.Notifier, error) {
	switch cfg.Notify.Driver {
	case config.NotifyLog, "":
		return NewLogNotifier(log), nil
	case config.NotifyAMQP:
		return NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue), nil
	case config.NotifyKafka:
		return NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic), nil
	case config.NotifyNone:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown notify driver %q", cfg.Notify.Driver)
}
