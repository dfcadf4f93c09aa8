package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/expertbooking/api"
	"github.com/Domenick1991/expertbooking/config"
	"github.com/Domenick1991/expertbooking/internal/bootstrap"
	"github.com/Domenick1991/expertbooking/internal/cache"
	"github.com/Domenick1991/expertbooking/internal/kafka"
	"github.com/Domenick1991/expertbooking/internal/logger"
	"github.com/Domenick1991/expertbooking/internal/metrics"
	"github.com/Domenick1991/expertbooking/internal/notify"
	"github.com/Domenick1991/expertbooking/internal/service/booking"
	"github.com/Domenick1991/expertbooking/internal/service/experts"
	"github.com/Domenick1991/expertbooking/internal/websocket"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.OpenStorage(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("open storage", zap.Error(err))
	}
	defer storage.Close()

	m := metrics.New()
	hub := websocket.NewHub(lg, m)
	sinks := []notify.Sink{hub}

	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, lg)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			lg.Warn("kafka unreachable, events will be retried per delivery", zap.Error(err))
		}
		sinks = append(sinks, kafka.NewEventSink(producer, cfg.Kafka.BookingEventsTopic))
	}
	dispatcher := notify.NewDispatcher(lg, m, cfg.Websocket.DispatcherBuffer, sinks...)

	bookingOpts := []booking.BookingServiceOption{booking.WithMetrics(m)}
	var expertCache experts.ExpertCache
	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Redis)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			lg.Warn("redis unreachable, serving without cache", zap.Error(err))
		} else {
			expertCache = redisCache
			bookingOpts = append(bookingOpts, booking.WithCache(redisCache))
		}
	}

	expertService := experts.NewExpertService(storage.Experts, expertCache, cfg.Booking.DefaultPageLimit, cfg.Booking.MaxPageLimit, lg)
	bookingService := booking.NewBookingService(storage.Experts, storage.Bookings, dispatcher, lg, bookingOpts...)

	router := api.NewRouter(api.RouterConfig{
		Production:     cfg.IsProduction(),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		WebsocketPath:  cfg.Websocket.Path,
		ClientBuffer:   cfg.Websocket.ClientBuffer,
	}, api.Services{
		Experts:  expertService,
		Bookings: bookingService,
		Hub:      hub,
		Metrics:  m.Handler(),
	}, lg)

	if err := bootstrap.Run(ctx, cfg, lg, router, hub, dispatcher); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
}
