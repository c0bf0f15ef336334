package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
)

// MemoryStore keeps flights and bookings in process. A transaction holds the
// store-wide mutex for its whole duration and undoes its writes on error, so
// every WithTx call is serialized against all others.
type MemoryStore struct {
	mu           sync.Mutex
	flights      map[int64]*domain.Flight
	bookings     map[int64]*domain.Booking
	messages     []domain.Message
	nextFlightID int64
	nextBooking  int64
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		flights:  make(map[int64]*domain.Flight),
		bookings: make(map[int64]*domain.Booking),
		now:      time.Now,
	}
}

func (s *MemoryStore) Flights() FlightRepository   { return &memoryFlights{s: s} }
func (s *MemoryStore) Bookings() BookingRepository { return &memoryBookings{s: s} }
func (s *MemoryStore) Messages() MessageRepository { return &memoryMessages{s: s} }

type memoryTxKey struct{}

type memoryTx struct {
	undo []func()
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memoryTxKey{}).(*memoryTx); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{}
	if err := fn(context.WithValue(ctx, memoryTxKey{}, tx)); err != nil {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		return err
	}
	return nil
}

// locked runs fn with the store mutex held, unless ctx already carries a
// transaction (which holds it). The returned tx is nil outside transactions.
func (s *MemoryStore) locked(ctx context.Context, fn func(tx *memoryTx) error) error {
	if tx, ok := ctx.Value(memoryTxKey{}).(*memoryTx); ok {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(nil)
}

func (tx *memoryTx) record(undo func()) {
	if tx != nil {
		tx.undo = append(tx.undo, undo)
	}
}

type memoryFlights struct {
	s *MemoryStore
}

func (r *memoryFlights) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.s.WithTx(ctx, fn)
}

func (r *memoryFlights) Create(ctx context.Context, f *domain.Flight) error {
	return r.s.locked(ctx, func(tx *memoryTx) error {
		r.s.nextFlightID++
		now := r.s.now().UTC()
		f.ID = r.s.nextFlightID
		f.Date = domain.Day(f.Date)
		f.CreatedAt = now
		f.UpdatedAt = now
		stored := *f
		r.s.flights[f.ID] = &stored

		id := f.ID
		tx.record(func() { delete(r.s.flights, id) })
		return nil
	})
}

func (r *memoryFlights) List(ctx context.Context) ([]domain.Flight, error) {
	return r.filter(ctx, func(domain.Flight) bool { return true }, true)
}

func (r *memoryFlights) ListMinCapacity(ctx context.Context, minCapacity int) ([]domain.Flight, error) {
	return r.filter(ctx, func(f domain.Flight) bool { return f.Remaining > minCapacity }, true)
}

func (r *memoryFlights) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	var out *domain.Flight
	err := r.s.locked(ctx, func(*memoryTx) error {
		f, ok := r.s.flights[id]
		if !ok {
			return domain.ErrFlightNotFound
		}
		copied := *f
		out = &copied
		return nil
	})
	return out, err
}

func (r *memoryFlights) GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryFlights) Search(ctx context.Context, q FlightQuery) ([]domain.Flight, error) {
	day := domain.Day(q.Date)
	return r.filter(ctx, func(f domain.Flight) bool {
		if !f.Date.Equal(day) {
			return false
		}
		if q.Origin != "" && f.Origin != q.Origin {
			return false
		}
		if q.Destination != "" && f.Destination != q.Destination {
			return false
		}
		if q.Category != "" && f.Category != q.Category {
			return false
		}
		return true
	}, false)
}

func (r *memoryFlights) DebitCapacity(ctx context.Context, flightID int64, weight int) error {
	return r.s.locked(ctx, func(tx *memoryTx) error {
		f, ok := r.s.flights[flightID]
		if !ok {
			return domain.ErrFlightNotFound
		}
		if f.Remaining < weight {
			return domain.ErrInsufficientCapacity
		}
		prev := *f
		f.Remaining -= weight
		f.UpdatedAt = r.s.now().UTC()
		tx.record(func() { *f = prev })
		return nil
	})
}

func (r *memoryFlights) CreditCapacity(ctx context.Context, flightID int64, weight int) error {
	return r.s.locked(ctx, func(tx *memoryTx) error {
		f, ok := r.s.flights[flightID]
		if !ok {
			return domain.ErrFlightNotFound
		}
		prev := *f
		f.Remaining = min(f.Remaining+weight, f.Capacity)
		f.UpdatedAt = r.s.now().UTC()
		tx.record(func() { *f = prev })
		return nil
	})
}

func (r *memoryFlights) filter(ctx context.Context, keep func(domain.Flight) bool, byDate bool) ([]domain.Flight, error) {
	out := make([]domain.Flight, 0)
	err := r.s.locked(ctx, func(*memoryTx) error {
		for _, f := range r.s.flights {
			if keep(*f) {
				out = append(out, *f)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if byDate && !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

type memoryBookings struct {
	s *MemoryStore
}

func (r *memoryBookings) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.s.WithTx(ctx, fn)
}

func (r *memoryBookings) Insert(ctx context.Context, b *domain.Booking) error {
	return r.s.locked(ctx, func(tx *memoryTx) error {
		if _, ok := r.s.flights[b.FlightID]; !ok {
			return domain.ErrFlightNotFound
		}
		r.s.nextBooking++
		b.ID = r.s.nextBooking
		b.UpdatedAt = b.CreatedAt
		stored := *b
		r.s.bookings[b.ID] = &stored

		id := b.ID
		tx.record(func() { delete(r.s.bookings, id) })
		return nil
	})
}

func (r *memoryBookings) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var out *domain.Booking
	err := r.s.locked(ctx, func(*memoryTx) error {
		b, ok := r.s.bookings[id]
		if !ok {
			return domain.ErrBookingNotFound
		}
		copied := *b
		out = &copied
		return nil
	})
	return out, err
}

func (r *memoryBookings) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	var out *domain.Booking
	err := r.s.locked(ctx, func(*memoryTx) error {
		for _, b := range r.s.bookings {
			if b.Token == token {
				copied := *b
				out = &copied
				return nil
			}
		}
		return domain.ErrBookingNotFound
	})
	return out, err
}

func (r *memoryBookings) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryBookings) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error) {
	var out *domain.Booking
	err := r.s.locked(ctx, func(tx *memoryTx) error {
		b, ok := r.s.bookings[id]
		if !ok {
			return domain.ErrBookingNotFound
		}
		if b.Status != from {
			return domain.ErrInvalidTransition
		}
		prev := *b
		b.Status = to
		b.UpdatedAt = r.s.now().UTC()
		tx.record(func() { *b = prev })

		copied := *b
		out = &copied
		return nil
	})
	return out, err
}

func (r *memoryBookings) ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]domain.Booking, error) {
	out := r.collect(ctx, func(b domain.Booking) bool {
		return b.Status == domain.BookingStatusHold && b.ExpiresAt.Before(now)
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpiresAt.Equal(out[j].ExpiresAt) {
			return out[i].ExpiresAt.Before(out[j].ExpiresAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryBookings) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	out := r.collect(ctx, func(b domain.Booking) bool {
		if filter.UserID != 0 && b.UserID != filter.UserID {
			return false
		}
		if filter.FlightID != 0 && b.FlightID != filter.FlightID {
			return false
		}
		if filter.Status != "" && b.Status != filter.Status {
			return false
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryBookings) collect(ctx context.Context, keep func(domain.Booking) bool) []domain.Booking {
	out := make([]domain.Booking, 0)
	_ = r.s.locked(ctx, func(*memoryTx) error {
		for _, b := range r.s.bookings {
			if keep(*b) {
				out = append(out, *b)
			}
		}
		return nil
	})
	return out
}

var (
	_ FlightRepository  = (*memoryFlights)(nil)
	_ BookingRepository = (*memoryBookings)(nil)
	_ MessageRepository = (*memoryMessages)(nil)
)

type memoryMessages struct {
	s *MemoryStore
}

func (r *memoryMessages) Post(ctx context.Context, msg *domain.Message) error {
	return r.s.locked(ctx, func(tx *memoryTx) error {
		msg.ID = int64(len(r.s.messages)) + 1
		msg.CreatedAt = r.s.now().UTC()
		r.s.messages = append(r.s.messages, *msg)

		n := len(r.s.messages) - 1
		tx.record(func() { r.s.messages = r.s.messages[:n] })
		return nil
	})
}

func (r *memoryMessages) List(ctx context.Context, limit int) ([]domain.Message, error) {
	var out []domain.Message
	_ = r.s.locked(ctx, func(*memoryTx) error {
		from := 0
		if limit > 0 && len(r.s.messages) > limit {
			from = len(r.s.messages) - limit
		}
		out = append(make([]domain.Message, 0, len(r.s.messages)-from), r.s.messages[from:]...)
		return nil
	})
	return out, nil
}
