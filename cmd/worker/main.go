package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Domenick1991/cargobooking/config"
	"github.com/Domenick1991/cargobooking/internal/bootstrap"
	"github.com/Domenick1991/cargobooking/internal/kafka"
	"github.com/Domenick1991/cargobooking/internal/logging"
	"github.com/Domenick1991/cargobooking/internal/metrics"
	"github.com/Domenick1991/cargobooking/internal/notify"
	"github.com/Domenick1991/cargobooking/internal/worker"
	kafkago "github.com/segmentio/kafka-go"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer closer.Close()
	logger = logger.With().Str("process", "worker").Logger()

	if cfg.Metrics.Enabled {
		metrics.Register()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init app")
	}
	defer app.Close()

	var locker worker.Locker
	if app.Cache != nil {
		locker = app.Cache
	}

	var wg sync.WaitGroup
	consume := func(topic string, handler func(context.Context, kafkago.Message) error) {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topic, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer consumer.Close()
			if err := consumer.Consume(ctx, handler); err != nil {
				logger.Error().Err(err).Str("topic", topic).Msg("consumer stopped")
			}
		}()
	}

	if cfg.Kafka.Enabled {
		if cfg.Kafka.NotificationsTopic != "" {
			consume(cfg.Kafka.NotificationsTopic, worker.NotificationHandler(notify.NewSender(logger), logger))
		}
		if cfg.Kafka.FlightFeedTopic != "" {
			consume(cfg.Kafka.FlightFeedTopic, worker.FlightFeedHandler(app.Flights, logger))
		}
	}

	logger.Info().Dur("interval", cfg.Worker.SweepInterval()).Msg("worker started")
	worker.NewSweep(app.Bookings, locker, cfg.Worker.SweepInterval(), logger).Run(ctx)

	wg.Wait()
	logger.Info().Msg("worker stopped")
}
