package booking

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/cargobooking/internal/clock"
	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/kafka"
	"github.com/Domenick1991/cargobooking/internal/migrations"
	"github.com/Domenick1991/cargobooking/internal/pricing"
	"github.com/Domenick1991/cargobooking/internal/repository"
	"github.com/Domenick1991/cargobooking/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock структуры

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// conflictingBookings fails the first n transactions with ErrTxConflict.
type conflictingBookings struct {
	repository.BookingRepository
	mu        sync.Mutex
	conflicts int
	calls     int
}

func (c *conflictingBookings) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	c.mu.Lock()
	c.calls++
	fail := c.conflicts > 0
	if fail {
		c.conflicts--
	}
	c.mu.Unlock()
	if fail {
		return domain.ErrTxConflict
	}
	return c.BookingRepository.WithTx(ctx, fn)
}

var (
	start     = time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	flightDay = time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc      *BookingService
	flights  repository.FlightRepository
	bookings repository.BookingRepository
	clock    *clock.Manual
}

func newFixture(t *testing.T, opts ...BookingServiceOption) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	return newFixtureWith(t, store.Flights(), store.Bookings(), opts...)
}

func newFixtureWith(t *testing.T, flights repository.FlightRepository, bookings repository.BookingRepository, opts ...BookingServiceOption) *fixture {
	t.Helper()
	clk := clock.NewManual(start)
	rates := pricing.NewRateTable(pricing.DefaultRates(), pricing.DefaultRate)
	return &fixture{
		svc:      NewBookingService(bookings, flights, rates, clk, opts...),
		flights:  flights,
		bookings: bookings,
		clock:    clk,
	}
}

func (f *fixture) addFlight(t *testing.T, capacity int, category domain.CargoCategory) int64 {
	t.Helper()
	flight := &domain.Flight{
		Carrier:      "Emirates",
		FlightNumber: "EK001",
		Origin:       "DXB",
		Destination:  "LHR",
		Date:         flightDay,
		Capacity:     capacity,
		Remaining:    capacity,
		Category:     category,
	}
	require.NoError(t, f.flights.Create(context.Background(), flight))
	return flight.ID
}

func (f *fixture) remaining(t *testing.T, flightID int64) int {
	t.Helper()
	flight, err := f.flights.GetByID(context.Background(), flightID)
	require.NoError(t, err)
	return flight.Remaining
}

func (f *fixture) hold(t *testing.T, flightID int64, weight int) *domain.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), CreateBookingInput{FlightID: flightID, UserID: 1, Weight: weight})
	require.NoError(t, err)
	return b
}

func TestCreateBooking_PricesAndDebits(t *testing.T) {
	producer := new(MockProducer)
	cache := new(MockCache)
	f := newFixture(t,
		WithProducer(producer, "cargo.bookings"),
		WithNotificationsTopic("cargo.notifications"),
		WithCache(cache),
	)
	flightID := f.addFlight(t, 1000, domain.CategoryPharma)

	isCreated := mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCreated && e.Weight == 400 && e.Total == 8000
	})
	producer.On("Publish", mock.Anything, "cargo.bookings", mock.Anything, isCreated).Return(nil).Once()
	producer.On("Publish", mock.Anything, "cargo.notifications", mock.Anything, isCreated).Return(nil).Once()
	cache.On("InvalidateFlights", mock.Anything).Return(nil).Once()

	b, err := f.svc.CreateBooking(context.Background(), CreateBookingInput{FlightID: flightID, UserID: 42, Weight: 400})
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusHold, b.Status)
	assert.Equal(t, int64(20), b.Rate)
	assert.Equal(t, int64(8000), b.Total)
	assert.Equal(t, domain.PaymentStatusUnpaid, b.PaymentStatus)
	assert.Equal(t, int64(42), b.UserID)
	assert.Equal(t, start.Add(120*time.Second), b.ExpiresAt)
	assert.NotEmpty(t, b.Token)
	assert.Equal(t, 600, f.remaining(t, flightID))

	producer.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCreateBooking_CategoryRates(t *testing.T) {
	testCases := []struct {
		category domain.CargoCategory
		rate     int64
	}{
		{domain.CategoryGeneral, 12},
		{domain.CategoryDangerousGoods, 35},
		{domain.CategoryHighValue, 50},
		{domain.CategoryPerishables, 18},
		{domain.CategoryAnimals, 40},
	}
	for _, tc := range testCases {
		t.Run(string(tc.category), func(t *testing.T) {
			f := newFixture(t)
			flightID := f.addFlight(t, 500, tc.category)
			b := f.hold(t, flightID, 10)
			assert.Equal(t, tc.rate, b.Rate)
			assert.Equal(t, tc.rate*10, b.Total)
		})
	}
}

func TestCreateBooking_DefaultCategory(t *testing.T) {
	f := newFixture(t, WithDefaultCategory(domain.CategoryPharma))
	flightID := f.addFlight(t, 500, "")

	b := f.hold(t, flightID, 10)
	assert.Equal(t, int64(20), b.Rate)
	assert.Equal(t, int64(200), b.Total)

	f = newFixture(t)
	flightID = f.addFlight(t, 500, "")
	b = f.hold(t, flightID, 10)
	assert.Equal(t, int64(12), b.Rate)
}

func TestCreateBooking_Validation(t *testing.T) {
	f := newFixture(t)
	flightID := f.addFlight(t, 1000, domain.CategoryGeneral)

	testCases := []struct {
		name  string
		input CreateBookingInput
		field string
	}{
		{name: "zero weight", input: CreateBookingInput{FlightID: flightID, UserID: 1, Weight: 0}, field: "weight"},
		{name: "negative weight", input: CreateBookingInput{FlightID: flightID, UserID: 1, Weight: -50}, field: "weight"},
		{name: "missing flight", input: CreateBookingInput{UserID: 1, Weight: 10}, field: "flight_id"},
		{name: "missing user", input: CreateBookingInput{FlightID: flightID, Weight: 10}, field: "user_id"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateBooking(context.Background(), tc.input)
			require.ErrorIs(t, err, domain.ErrValidation)

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
	assert.Equal(t, 1000, f.remaining(t, flightID))
}

func TestCreateBooking_UnknownFlight(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateBooking(context.Background(), CreateBookingInput{FlightID: 99, UserID: 1, Weight: 10})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateBooking_InsufficientCapacity(t *testing.T) {
	f := newFixture(t)
	flightID := f.addFlight(t, 1000, domain.CategoryGeneral)

	f.hold(t, flightID, 600)
	_, err := f.svc.CreateBooking(context.Background(), CreateBookingInput{FlightID: flightID, UserID: 2, Weight: 500})
	require.ErrorIs(t, err, domain.ErrInsufficientCapacity)
	assert.Equal(t, 400, f.remaining(t, flightID))

	bookings, err := f.svc.ListBookings(context.Background(), domain.BookingFilter{FlightID: flightID})
	require.NoError(t, err)
	assert.Len(t, bookings, 1)

	f.hold(t, flightID, 400)
	assert.Equal(t, 0, f.remaining(t, flightID))
}

func TestCreateBooking_PublishFailureKeepsHold(t *testing.T) {
	producer := new(MockProducer)
	f := newFixture(t, WithProducer(producer, "cargo.bookings"))
	flightID := f.addFlight(t, 1000, domain.CategoryGeneral)

	producer.On("Publish", mock.Anything, "cargo.bookings", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	b, err := f.svc.CreateBooking(context.Background(), CreateBookingInput{FlightID: flightID, UserID: 1, Weight: 100})
	require.NoError(t, err)

	stored, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusHold, stored.Status)
	assert.Equal(t, 900, f.remaining(t, flightID))
}

func TestCreateBooking_RetriesConflicts(t *testing.T) {
	store := repository.NewMemoryStore()
	bookings := &conflictingBookings{BookingRepository: store.Bookings(), conflicts: 2}
	f := newFixtureWith(t, store.Flights(), bookings, WithRetryPolicy(retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, BackoffFactor: 1}))
	flightID := f.addFlight(t, 1000, domain.CategoryGeneral)

	b, err := f.svc.CreateBooking(context.Background(), CreateBookingInput{FlightID: flightID, UserID: 1, Weight: 100})
	require.NoError(t, err)
	assert.Equal(t, 3, bookings.calls)
	assert.Equal(t, domain.BookingStatusHold, b.Status)
	assert.Equal(t, 900, f.remaining(t, flightID))
}

func TestCreateBooking_GivesUpAfterBoundedRetries(t *testing.T) {
	store := repository.NewMemoryStore()
	bookings := &conflictingBookings{BookingRepository: store.Bookings(), conflicts: 10}
	f := newFixtureWith(t, store.Flights(), bookings, WithRetryPolicy(retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, BackoffFactor: 1}))
	flightID := f.addFlight(t, 1000, domain.CategoryGeneral)

	_, err := f.svc.CreateBooking(context.Background(), CreateBookingInput{FlightID: flightID, UserID: 1, Weight: 100})
	require.ErrorIs(t, err, domain.ErrTxConflict)
	assert.Equal(t, 3, bookings.calls)
	assert.Equal(t, 1000, f.remaining(t, flightID))
}

func TestConfirmBooking(t *testing.T) {
	f := newFixture(t)
	flightID := f.addFlight(t, 1000, domain.CategoryPharma)
	b := f.hold(t, flightID, 400)

	f.clock.Advance(60 * time.Second)
	confirmed, err := f.svc.ConfirmBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, confirmed.Status)
	assert.Equal(t, 600, f.remaining(t, flightID))

	_, err = f.svc.ConfirmBooking(context.Background(), b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.ConfirmBooking(context.Background(), b.ID+100)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirmBooking_AtExpiryBoundary(t *testing.T) {
	f := newFixture(t)
	flightID := f.addFlight(t, 1000, domain.CategoryGeneral)
	b := f.hold(t, flightID, 100)

	f.clock.Advance(120 * time.Second)
	confirmed, err := f.svc.ConfirmBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, confirmed.Status)
}

func TestConfirmBooking_ExpiredHoldBeforeSweep(t *testing.T) {
	f := newFixture(t)
	flightID := f.addFlight(t, 1000, domain.CategoryPharma)
	b := f.hold(t, flightID, 400)

	f.clock.Advance(121 * time.Second)
	_, err := f.svc.ConfirmBooking(context.Background(), b.ID)
	require.ErrorIs(t, err, domain.ErrHoldExpired)

	stored, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusHold, stored.Status)
	assert.Equal(t, 600, f.remaining(t, flightID))

	expired, err := f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, domain.BookingStatusCancelled, expired[0].Status)
	assert.Equal(t, 1000, f.remaining(t, flightID))

	_, err = f.svc.ConfirmBooking(context.Background(), b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelBooking(t *testing.T) {
	producer := new(MockProducer)
	f := newFixture(t, WithProducer(producer, "cargo.bookings"))
	flightID := f.addFlight(t, 1000, domain.CategoryGeneral)

	producer.On("Publish", mock.Anything, "cargo.bookings", mock.Anything, mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCreated
	})).Return(nil)
	producer.On("Publish", mock.Anything, "cargo.bookings", mock.Anything, mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCancelled
	})).Return(nil).Once()

	b := f.hold(t, flightID, 300)
	assert.Equal(t, 700, f.remaining(t, flightID))

	cancelled, err := f.svc.CancelBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, 1000, f.remaining(t, flightID))

	again, err := f.svc.CancelBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, again.Status)
	assert.Equal(t, 1000, f.remaining(t, flightID))

	producer.AssertExpectations(t)
}

func TestCancelBooking_ConfirmedIsTerminal(t *testing.T) {
	f := newFixture(t)
	flightID := f.addFlight(t, 1000, domain.CategoryGeneral)
	b := f.hold(t, flightID, 300)

	_, err := f.svc.ConfirmBooking(context.Background(), b.ID)
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(context.Background(), b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 700, f.remaining(t, flightID))

	_, err = f.svc.CancelBooking(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSweepExpired(t *testing.T) {
	f := newFixture(t)
	flightID := f.addFlight(t, 1000, domain.CategoryGeneral)

	first := f.hold(t, flightID, 100)
	f.clock.Advance(30 * time.Second)
	second := f.hold(t, flightID, 200)
	confirmed := f.hold(t, flightID, 50)
	_, err := f.svc.ConfirmBooking(context.Background(), confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, 650, f.remaining(t, flightID))

	f.clock.Advance(100 * time.Second)
	expired, err := f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, first.ID, expired[0].ID)
	assert.Equal(t, 750, f.remaining(t, flightID))

	f.clock.Advance(time.Minute)
	expired, err = f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, second.ID, expired[0].ID)
	assert.Equal(t, 950, f.remaining(t, flightID))

	expired, err = f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Empty(t, expired)
	assert.Equal(t, 950, f.remaining(t, flightID))

	stored, err := f.bookings.GetByID(context.Background(), confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, stored.Status)
}

func TestSweepExpired_Batches(t *testing.T) {
	f := newFixture(t, WithSweepBatchSize(2))
	flightID := f.addFlight(t, 1000, domain.CategoryGeneral)
	for i := 0; i < 3; i++ {
		f.hold(t, flightID, 100)
	}

	f.clock.Advance(5 * time.Minute)
	expired, err := f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Len(t, expired, 2)

	expired, err = f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Len(t, expired, 1)
	assert.Equal(t, 1000, f.remaining(t, flightID))
}

func TestSweepExpired_ConcurrentSweepsCreditOnce(t *testing.T) {
	f := newFixture(t)
	flightID := f.addFlight(t, 1000, domain.CategoryGeneral)
	for i := 0; i < 10; i++ {
		f.hold(t, flightID, 50)
	}
	assert.Equal(t, 500, f.remaining(t, flightID))
	f.clock.Advance(3 * time.Minute)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			expired, err := f.svc.SweepExpired(context.Background())
			assert.NoError(t, err)
			mu.Lock()
			total += len(expired)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, total)
	assert.Equal(t, 1000, f.remaining(t, flightID))
}

func TestReadsSweepFirst(t *testing.T) {
	f := newFixture(t)
	flightID := f.addFlight(t, 1000, domain.CategoryGeneral)
	b := f.hold(t, flightID, 250)

	f.clock.Advance(121 * time.Second)

	got, err := f.svc.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, got.Status)
	assert.Equal(t, 1000, f.remaining(t, flightID))

	byToken, err := f.svc.GetBookingByToken(context.Background(), b.Token)
	require.NoError(t, err)
	assert.Equal(t, b.ID, byToken.ID)

	list, err := f.svc.ListBookings(context.Background(), domain.BookingFilter{Status: domain.BookingStatusHold})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.ListBookings(context.Background(), domain.BookingFilter{Status: "PENDING"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListBookings_Filters(t *testing.T) {
	f := newFixture(t)
	first := f.addFlight(t, 1000, domain.CategoryGeneral)
	second := f.addFlight(t, 1000, domain.CategoryGeneral)

	_, err := f.svc.CreateBooking(context.Background(), CreateBookingInput{FlightID: first, UserID: 1, Weight: 10})
	require.NoError(t, err)
	_, err = f.svc.CreateBooking(context.Background(), CreateBookingInput{FlightID: second, UserID: 2, Weight: 10})
	require.NoError(t, err)

	mine, err := f.svc.ListBookings(context.Background(), domain.BookingFilter{UserID: 1})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first, mine[0].FlightID)

	onSecond, err := f.svc.ListBookings(context.Background(), domain.BookingFilter{FlightID: second})
	require.NoError(t, err)
	require.Len(t, onSecond, 1)
	assert.Equal(t, int64(2), onSecond[0].UserID)
}

func concurrencyBackends(t *testing.T) map[string]*fixture {
	t.Helper()

	db, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "cargo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.ApplySQLite(context.Background(), db))

	return map[string]*fixture{
		"memory": newFixture(t),
		"sqlite": newFixtureWith(t, repository.NewSQLiteFlightRepository(db), repository.NewSQLiteBookingRepository(db)),
	}
}

func TestCreateBooking_ConcurrentOversell(t *testing.T) {
	for name, f := range concurrencyBackends(t) {
		t.Run(name, func(t *testing.T) {
			flightID := f.addFlight(t, 100, domain.CategoryGeneral)

			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				success int
				short   int
			)
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func(user int64) {
					defer wg.Done()
					_, err := f.svc.CreateBooking(context.Background(), CreateBookingInput{FlightID: flightID, UserID: user, Weight: 60})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						success++
					case errors.Is(err, domain.ErrInsufficientCapacity):
						short++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}(int64(i + 1))
			}
			wg.Wait()

			assert.Equal(t, 1, success)
			assert.Equal(t, 1, short)
			assert.Equal(t, 40, f.remaining(t, flightID))
		})
	}
}

// TestConservation drives random interleavings of every operation and checks
// that remaining plus active weight always equals declared capacity.
func TestConservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	capacities := map[int64]int{}
	var flightIDs []int64
	for _, c := range []int{500, 1200, 3000} {
		id := f.addFlight(t, c, domain.CategoryPerishables)
		capacities[id] = c
		flightIDs = append(flightIDs, id)
	}

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			var mine []int64
			for step := 0; step < 150; step++ {
				switch op := rng.Intn(10); {
				case op < 4:
					b, err := f.svc.CreateBooking(ctx, CreateBookingInput{
						FlightID: flightIDs[rng.Intn(len(flightIDs))],
						UserID:   seed + 1,
						Weight:   rng.Intn(400) + 1,
					})
					if err == nil {
						mine = append(mine, b.ID)
					} else if !errors.Is(err, domain.ErrInsufficientCapacity) {
						t.Errorf("create: %v", err)
					}
				case op < 6 && len(mine) > 0:
					_, err := f.svc.ConfirmBooking(ctx, mine[rng.Intn(len(mine))])
					if err != nil && !errors.Is(err, domain.ErrInvalidTransition) && !errors.Is(err, domain.ErrHoldExpired) {
						t.Errorf("confirm: %v", err)
					}
				case op < 8 && len(mine) > 0:
					_, err := f.svc.CancelBooking(ctx, mine[rng.Intn(len(mine))])
					if err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
						t.Errorf("cancel: %v", err)
					}
				case op == 8:
					f.clock.Advance(time.Duration(rng.Intn(40)) * time.Second)
				default:
					if _, err := f.svc.SweepExpired(ctx); err != nil {
						t.Errorf("sweep: %v", err)
					}
				}
			}
		}(int64(worker))
	}
	wg.Wait()

	check := func() {
		all, err := f.bookings.List(ctx, domain.BookingFilter{})
		require.NoError(t, err)
		for _, id := range flightIDs {
			active := 0
			for _, b := range all {
				if b.FlightID == id && b.Status.Active() {
					active += b.Weight
				}
			}
			remaining := f.remaining(t, id)
			assert.GreaterOrEqual(t, remaining, 0)
			assert.LessOrEqual(t, remaining, capacities[id])
			assert.Equal(t, capacities[id], remaining+active, "flight %d", id)
		}
	}
	check()

	f.clock.Advance(10 * time.Minute)
	_, err := f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	check()

	holds, err := f.bookings.List(ctx, domain.BookingFilter{Status: domain.BookingStatusHold})
	require.NoError(t, err)
	assert.Empty(t, holds)
}
