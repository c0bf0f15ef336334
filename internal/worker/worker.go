package worker

import (
	"context"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/kafka"
	"github.com/Domenick1991/cargobooking/internal/service/flights"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

const sweepLockName = "sweep"

type Sweeper interface {
	SweepExpired(ctx context.Context) ([]domain.Booking, error)
}

// Locker serializes sweeps across worker replicas.
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name string) error
}

type Notifier interface {
	Send(ctx context.Context, event kafka.BookingEvent) error
}

type Importer interface {
	Import(ctx context.Context, source string, inputs []flights.CreateFlightInput) ([]domain.Flight, error)
}

type Sweep struct {
	sweeper  Sweeper
	locker   Locker
	interval time.Duration
	log      zerolog.Logger
}

func NewSweep(sweeper Sweeper, locker Locker, interval time.Duration, logger zerolog.Logger) *Sweep {
	return &Sweep{
		sweeper:  sweeper,
		locker:   locker,
		interval: interval,
		log:      logger.With().Str("component", "sweeper").Logger(),
	}
}

// Run sweeps once per interval until ctx is cancelled.
func (s *Sweep) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Once(ctx); err != nil {
				s.log.Error().Err(err).Msg("expire holds")
			}
		}
	}
}

// Once runs a single sweep. When another replica holds the lock it does
// nothing and reports zero expired holds.
func (s *Sweep) Once(ctx context.Context) (int, error) {
	if s.locker != nil {
		acquired, err := s.locker.AcquireLock(ctx, sweepLockName, s.interval)
		if err != nil {
			s.log.Warn().Err(err).Msg("sweep lock unavailable, sweeping anyway")
		} else if !acquired {
			s.log.Debug().Msg("sweep already running elsewhere")
			return 0, nil
		} else {
			defer func() {
				if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), sweepLockName); err != nil {
					s.log.Warn().Err(err).Msg("release sweep lock")
				}
			}()
		}
	}

	expired, err := s.sweeper.SweepExpired(ctx)
	if len(expired) > 0 {
		s.log.Info().Int("count", len(expired)).Msg("expired holds released")
	}
	return len(expired), err
}

// NotificationHandler forwards decoded booking events to the notifier.
// Undecodable messages are logged and skipped.
func NotificationHandler(notifier Notifier, logger zerolog.Logger) func(context.Context, kafkago.Message) error {
	return func(ctx context.Context, msg kafkago.Message) error {
		event, err := kafka.DecodeBookingEvent(msg)
		if err != nil {
			logger.Warn().Err(err).Int64("offset", msg.Offset).Msg("skip notification")
			return nil
		}
		return notifier.Send(ctx, event)
	}
}

// FlightFeedHandler imports one airline feed record per message.
func FlightFeedHandler(importer Importer, logger zerolog.Logger) func(context.Context, kafkago.Message) error {
	return func(ctx context.Context, msg kafkago.Message) error {
		record, err := kafka.DecodeFlightRecord(msg)
		if err != nil {
			logger.Warn().Err(err).Int64("offset", msg.Offset).Msg("skip flight record")
			return nil
		}
		created, err := importer.Import(ctx, flights.SourceFeed, []flights.CreateFlightInput{{
			Carrier:      record.Airline,
			FlightNumber: record.FlightNo,
			Origin:       record.Origin,
			Destination:  record.Destination,
			Date:         record.Date,
			Capacity:     record.Capacity,
			Category:     record.CargoType,
		}})
		if err != nil {
			return err
		}
		for _, f := range created {
			logger.Info().Int64("flight_id", f.ID).Str("route", f.Route()).Msg("flight imported from feed")
		}
		return nil
	}
}
