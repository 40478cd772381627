package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"raidledger/internal/events"
	"raidledger/internal/notifier"
	"raidledger/pkg/client"
	"raidledger/pkg/config"
	"raidledger/pkg/kafka"
	kafka_config "raidledger/pkg/kafka/config"
	kafkamiddleware "raidledger/pkg/kafka/middleware"
	"raidledger/pkg/sealer"
)

const ServiceName = "notifier"

const consumerGroupID = "raidledger-notifier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Notifier service")

	seal, err := sealer.New(cfg.CorrelationSealKey)
	if err != nil {
		cfg.Log.Fatal("Invalid correlation seal key", "error", err)
	}
	display := client.NewDisplayClient(cfg.DisplayBaseURL, seal, cfg.Log)
	n := notifier.NewNotifier(display, cfg.Log)

	kafkaCfg := kafka_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	consumer, err := kafka.NewConsumer(kafkaCfg, events.Topic, consumerGroupID, events.DLQTopic, n.Handle)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafkamiddleware.MetricsConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Consuming battle events", "topic", events.Topic, "group_id", consumerGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}
