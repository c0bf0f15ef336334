package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/cargobooking/config"
	"github.com/Domenick1991/cargobooking/internal/bootstrap"
	"github.com/Domenick1991/cargobooking/internal/logging"
	"github.com/Domenick1991/cargobooking/internal/metrics"
	"github.com/rs/zerolog"
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

	if cfg.Metrics.Enabled {
		metrics.Register()
	}

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server error")
		closer.Close()
		os.Exit(1)
	}
	closer.Close()
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return bootstrap.Run(ctx, app)
}
