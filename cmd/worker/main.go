package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/expertbooking/config"
	"github.com/Domenick1991/expertbooking/internal/email"
	"github.com/Domenick1991/expertbooking/internal/kafka"
	"github.com/Domenick1991/expertbooking/internal/logger"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if !cfg.Kafka.Enabled() {
		lg.Fatal("kafka brokers and booking_events_topic must be configured for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic, lg)
	defer consumer.Close()

	emailSender := email.NewSender(lg)

	lg.Info("worker started", zap.String("topic", cfg.Kafka.BookingEventsTopic), zap.String("group", cfg.Kafka.GroupID))
	err = consumer.Consume(ctx, func(ctx context.Context, event kafka.BookingEvent) error {
		err := emailSender.Send(ctx, event)
		if errors.Is(err, email.ErrNoRecipient) {
			lg.Warn("drop event without recipient", zap.String("booking_id", event.BookingID))
			return nil
		}
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		lg.Fatal("consumer stopped", zap.Error(err))
	}
	lg.Info("worker stopped")
}
