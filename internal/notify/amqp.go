package notify

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
)

// AMQPPublisher publishes status events to a durable RabbitMQ queue through
// the default exchange.  It dials per publish and holds no connection
// between events.
type AMQPPublisher struct {
	url   string
	queue string
}

func NewAMQPPublisher(url, queueName string) *AMQPPublisher {
	if queueName == "" {
		queueName = queue.DefaultStatusQueue
	}
	return &AMQPPublisher{url: url, queue: queueName}
}

// Notify publishes ev as a persistent message keyed by the queue name.
func (p *AMQPPublisher) Notify(ctx context.Context, ev model.StatusEvent) error {
	body, err := queue.Encode(ev)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.BookingCode,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}
