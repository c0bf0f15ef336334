package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/cargobooking/config"
	"github.com/Domenick1991/cargobooking/internal/cache"
	"github.com/Domenick1991/cargobooking/internal/clock"
	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/kafka"
	"github.com/Domenick1991/cargobooking/internal/pricing"
	"github.com/Domenick1991/cargobooking/internal/retry"
	"github.com/Domenick1991/cargobooking/internal/service/booking"
	"github.com/Domenick1991/cargobooking/internal/service/flights"
	"github.com/Domenick1991/cargobooking/internal/service/optimizer"
	"github.com/Domenick1991/cargobooking/internal/service/workspace"
	"github.com/rs/zerolog"
)

// App holds the wired services shared by the server and worker binaries.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Store     *Store
	Cache     *cache.RedisCache
	Producer  *kafka.Producer
	Flights   *flights.FlightService
	Bookings  *booking.BookingService
	Optimizer *optimizer.Service
	Workspace *workspace.Service
}

func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger, Store: store}

	clk := clock.NewSystem()
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.Booking.MaxTxRetries + 1
	defaultCategory := domain.NormalizeCategory(cfg.Booking.DefaultCategory)
	flightOpts := []flights.Option{
		flights.WithLargeFlightMinCapacity(cfg.Booking.LargeFlightMinCapacity),
		flights.WithDefaultCategory(defaultCategory),
		flights.WithRetryPolicy(policy),
		flights.WithLogger(logger),
	}
	bookingOpts := []booking.BookingServiceOption{
		booking.WithHoldTTL(cfg.Booking.HoldDuration()),
		booking.WithDefaultCategory(defaultCategory),
		booking.WithSweepBatchSize(cfg.Booking.SweepBatchSize),
		booking.WithRetryPolicy(policy),
		booking.WithLogger(logger),
	}

	if cfg.Redis.Enabled {
		app.Cache = cache.NewRedisCache(cfg.Redis, cfg.Booking.FlightsCacheTTL())
		if err := app.Cache.Ping(ctx); err != nil {
			app.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		flightOpts = append(flightOpts, flights.WithCache(app.Cache))
		bookingOpts = append(bookingOpts, booking.WithCache(app.Cache))
	}

	if cfg.Kafka.Enabled {
		app.Producer = kafka.NewProducer(cfg.Kafka.Brokers, logger)
		if err := app.Producer.CheckConnection(ctx); err != nil {
			logger.Warn().Err(err).Msg("kafka is unreachable, booking events will be retried per publish")
		}
		bookingOpts = append(bookingOpts,
			booking.WithProducer(app.Producer, cfg.Kafka.BookingTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	rates := pricing.NewRateTableFromConfig(cfg.Booking.Rates, cfg.Booking.FallbackRate())
	app.Flights = flights.NewFlightService(store.Flights, flightOpts...)
	app.Bookings = booking.NewBookingService(store.Bookings, store.Flights, rates, clk, bookingOpts...)
	app.Optimizer = optimizer.NewService(store.Flights, store.Bookings, app.Bookings, clk, logger)
	app.Workspace = workspace.NewService(store.Messages, logger)
	return app, nil
}

func (a *App) Close() {
	if a.Producer != nil {
		if err := a.Producer.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("close kafka producer")
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("close redis")
		}
	}
	a.Store.Close()
}
