package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/notify"
	"github.com/iliyamo/table-reservation/internal/queue"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify-worker",
		Short: "Consume reservation status events and forward them",
		Long: `Consume reservation status events from RabbitMQ or Kafka (per
NOTIFY_DRIVER) and POST each one to NOTIFY_WEBHOOK_URL.  Without a webhook
URL the events are only logged.`,
		Args: cobra.NoArgs,
		RunE: runWorker,
	}
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle := notify.Forwarder(cfg.Notify.WebhookURL, &http.Client{Timeout: cfg.Notify.Timeout}, log.Named("forward"))

	switch cfg.Notify.Driver {
	case config.NotifyAMQP:
		log.Info("notify-worker consuming", zap.String("queue", cfg.RabbitMQ.Queue))
		err = queue.StartStatusConsumer(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, handle, log)
	case config.NotifyKafka:
		consumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, log)
		defer consumer.Close()
		log.Info("notify-worker consuming", zap.String("topic", cfg.Kafka.Topic), zap.Strings("brokers", cfg.Kafka.Brokers))
		err = consumer.Consume(ctx, handle)
	default:
		return fmt.Errorf("notify-worker needs NOTIFY_DRIVER amqp or kafka, got %q", cfg.Notify.Driver)
	}
	if errors.Is(err, context.Canceled) {
		log.Info("notify-worker stopped")
		return nil
	}
	return err
}
