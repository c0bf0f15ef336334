package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/cargobooking/internal/clock"
	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/kafka"
	"github.com/Domenick1991/cargobooking/internal/ledger"
	"github.com/Domenick1991/cargobooking/internal/metrics"
	"github.com/Domenick1991/cargobooking/internal/pricing"
	"github.com/Domenick1991/cargobooking/internal/repository"
	"github.com/Domenick1991/cargobooking/internal/retry"
	"github.com/Domenick1991/cargobooking/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultHoldTTL        = 120 * time.Second
	DefaultSweepBatchSize = 500
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, id int64) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id int64) (*domain.Booking, error)
	SweepExpired(ctx context.Context) ([]domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	GetBookingByToken(ctx context.Context, token string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
}

// Cache is the flight listing cache; it is dropped after every capacity change.
type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	FlightID int64 `json:"flight_id" validate:"gt=0"`
	UserID   int64 `json:"user_id" validate:"gt=0"`
	Weight   int   `json:"weight" validate:"gt=0"`
}

type BookingService struct {
	bookings           repository.BookingRepository
	ledger             *ledger.Ledger
	rates              pricing.RateTable
	clock              clock.Clock
	validator          *validation.Validator
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
	defaultCategory    domain.CargoCategory
	sweepBatchSize     int
	retryPolicy        retry.Policy
	log                zerolog.Logger
}

type BookingServiceOption func(*BookingService)

func WithHoldTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if ttl > 0 {
			s.holdTTL = ttl
		}
	}
}

// WithDefaultCategory sets the category priced for flights stored without one.
func WithDefaultCategory(category domain.CargoCategory) BookingServiceOption {
	return func(s *BookingService) {
		if category.Valid() {
			s.defaultCategory = category
		}
	}
}

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithSweepBatchSize(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.sweepBatchSize = n
		}
	}
}

func WithRetryPolicy(p retry.Policy) BookingServiceOption {
	return func(s *BookingService) {
		s.retryPolicy = p
	}
}

func WithLogger(logger zerolog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = logger
	}
}

// NewBookingService wires the state machine. bookings and flights must be
// backed by the same store so one transaction spans both.
func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	rates pricing.RateTable,
	clk clock.Clock,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:        bookings,
		rates:           rates,
		clock:           clk,
		validator:       validation.New(),
		holdTTL:         DefaultHoldTTL,
		defaultCategory: domain.CategoryGeneral,
		sweepBatchSize:  DefaultSweepBatchSize,
		retryPolicy:     retry.DefaultPolicy(),
		log:             zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	if service.clock == nil {
		service.clock = clock.NewSystem()
	}
	service.log = service.log.With().Str("component", "booking_service").Logger()
	service.ledger = ledger.New(flights, service.log)
	return service
}

// CreateBooking debits the flight and records a HOLD priced at the flight's
// category rate. The hold lapses holdTTL after creation unless confirmed.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := s.validator.Struct(input); err != nil {
		metrics.IncRejection("create", "validation")
		return nil, err
	}

	var created *domain.Booking
	err := s.inTx(ctx, func(txCtx context.Context) error {
		flight, err := s.ledger.Lookup(txCtx, input.FlightID)
		if err != nil {
			return err
		}
		if err := s.ledger.Debit(txCtx, flight.ID, input.Weight); err != nil {
			return err
		}

		now := s.clock.Now()
		category := flight.Category
		if category == "" {
			category = s.defaultCategory
		}
		rate, total := s.rates.Quote(category, input.Weight)
		booking := &domain.Booking{
			Token:         uuid.NewString(),
			UserID:        input.UserID,
			FlightID:      flight.ID,
			Weight:        input.Weight,
			Status:        domain.BookingStatusHold,
			ExpiresAt:     now.Add(s.holdTTL),
			Rate:          rate,
			Total:         total,
			PaymentStatus: domain.PaymentStatusUnpaid,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.bookings.Insert(txCtx, booking); err != nil {
			return err
		}
		created = booking
		return nil
	})
	if err != nil {
		s.reject("create", err)
		return nil, err
	}

	metrics.AddBookedWeight(created.Weight)
	s.log.Info().
		Int64("booking_id", created.ID).
		Int64("flight_id", created.FlightID).
		Int("weight", created.Weight).
		Int64("total", created.Total).
		Time("expires_at", created.ExpiresAt).
		Msg("hold created")
	s.afterCommit(ctx, kafka.EventBookingCreated, created)
	return created, nil
}

// ConfirmBooking turns a live HOLD into CONFIRMED. A hold past its expiry
// fails with ErrHoldExpired even if no sweep has run yet; capacity stays
// debited until the sweep or a cancel returns it.
func (s *BookingService) ConfirmBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	var confirmed *domain.Booking
	err := s.inTx(ctx, func(txCtx context.Context) error {
		current, err := s.bookings.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if current.Status != domain.BookingStatusHold {
			return fmt.Errorf("%w: cannot confirm %s booking", domain.ErrInvalidTransition, current.Status)
		}
		if current.HoldExpired(s.clock.Now()) {
			return domain.ErrHoldExpired
		}

		updated, err := s.bookings.TransitionStatus(txCtx, id, domain.BookingStatusHold, domain.BookingStatusConfirmed)
		if err != nil {
			return err
		}
		confirmed = updated
		return nil
	})
	if err != nil {
		s.reject("confirm", err)
		return nil, err
	}

	s.log.Info().Int64("booking_id", confirmed.ID).Msg("booking confirmed")
	s.afterCommit(ctx, kafka.EventBookingConfirmed, confirmed)
	return confirmed, nil
}

// CancelBooking releases a HOLD and returns its weight to the flight.
// Cancelling an already cancelled booking returns it unchanged; a
// CONFIRMED booking cannot be cancelled.
func (s *BookingService) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	var (
		cancelled *domain.Booking
		noop      bool
	)
	err := s.inTx(ctx, func(txCtx context.Context) error {
		noop = false
		current, err := s.bookings.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		switch current.Status {
		case domain.BookingStatusCancelled:
			cancelled, noop = current, true
			return nil
		case domain.BookingStatusHold:
		default:
			return fmt.Errorf("%w: cannot cancel %s booking", domain.ErrInvalidTransition, current.Status)
		}

		updated, err := s.release(txCtx, current)
		if err != nil {
			return err
		}
		cancelled = updated
		return nil
	})
	if err != nil {
		s.reject("cancel", err)
		return nil, err
	}
	if noop {
		return cancelled, nil
	}

	s.log.Info().Int64("booking_id", cancelled.ID).Int("weight", cancelled.Weight).Msg("booking cancelled")
	s.afterCommit(ctx, kafka.EventBookingCancelled, cancelled)
	return cancelled, nil
}

// SweepExpired cancels up to one batch of holds whose expiry is before the
// current clock reading and credits their weight back. Each hold is released
// in its own transaction; a hold another caller already moved is skipped, so
// concurrent or repeated sweeps release every hold exactly once.
func (s *BookingService) SweepExpired(ctx context.Context) ([]domain.Booking, error) {
	now := s.clock.Now()
	due, err := s.bookings.ListExpiredHolds(ctx, now, s.sweepBatchSize)
	if err != nil {
		return nil, fmt.Errorf("list expired holds: %w", err)
	}

	expired := make([]domain.Booking, 0, len(due))
	var errs []error
	for _, candidate := range due {
		released, err := s.expireOne(ctx, candidate.ID, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("expire booking %d: %w", candidate.ID, err))
			continue
		}
		if released == nil {
			continue
		}
		expired = append(expired, *released)
		s.afterCommit(ctx, kafka.EventBookingExpired, released)
	}

	if len(expired) > 0 {
		s.log.Info().Int("count", len(expired)).Msg("expired holds released")
	}
	if len(errs) > 0 {
		s.log.Error().Err(errors.Join(errs...)).Int("failed", len(errs)).Msg("sweep incomplete")
		return expired, errors.Join(errs...)
	}
	return expired, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) GetBookingByToken(ctx context.Context, token string) (*domain.Booking, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}
	return s.bookings.GetByToken(ctx, token)
}

func (s *BookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "unknown booking status "+string(filter.Status))
	}
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}
	return s.bookings.List(ctx, filter)
}

func (s *BookingService) expireOne(ctx context.Context, id int64, now time.Time) (*domain.Booking, error) {
	var released *domain.Booking
	err := s.inTx(ctx, func(txCtx context.Context) error {
		released = nil
		current, err := s.bookings.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if current.Status != domain.BookingStatusHold || !current.ExpiresAt.Before(now) {
			return nil
		}
		updated, err := s.release(txCtx, current)
		if err != nil {
			return err
		}
		released = updated
		return nil
	})
	if errors.Is(err, domain.ErrInvalidTransition) {
		return nil, nil
	}
	return released, err
}

// release moves a HOLD to CANCELLED and credits its weight. The status write
// comes first so a lost race leaves capacity untouched.
func (s *BookingService) release(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	updated, err := s.bookings.TransitionStatus(ctx, b.ID, domain.BookingStatusHold, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Credit(ctx, b.FlightID, b.Weight); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BookingService) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	attempt := 0
	return retry.Do(ctx, s.retryPolicy, isConflict, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			metrics.IncTxRetry()
			s.log.Debug().Int("attempt", attempt).Msg("retrying after transaction conflict")
		}
		return s.bookings.WithTx(ctx, fn)
	})
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrTxConflict)
}

func (s *BookingService) reject(operation string, err error) {
	reason := "internal"
	switch {
	case errors.Is(err, domain.ErrValidation):
		reason = "validation"
	case errors.Is(err, domain.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, domain.ErrInsufficientCapacity):
		reason = "insufficient_capacity"
	case errors.Is(err, domain.ErrInvalidTransition):
		reason = "invalid_transition"
	case errors.Is(err, domain.ErrHoldExpired):
		reason = "hold_expired"
	case errors.Is(err, domain.ErrTxConflict):
		reason = "tx_conflict"
	}
	metrics.IncRejection(operation, reason)
	if reason == "internal" || reason == "tx_conflict" {
		s.log.Error().Err(err).Str("operation", operation).Msg("booking operation failed")
	}
}

// afterCommit runs the side effects of a committed transition. Their
// failures are logged and never undo the transition.
func (s *BookingService) afterCommit(ctx context.Context, eventType string, booking *domain.Booking) {
	metrics.IncTransition(eventType)
	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate flights cache")
		}
	}
	if err := s.publish(ctx, eventType, booking); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Str("token", booking.Token).Msg("failed to publish booking event")
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.NewBookingEvent(eventType, booking, s.clock.Now())
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Token, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.Token, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
