package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
)

// Transactor runs fn inside a single store transaction. Repositories of the
// same backend join a transaction carried in ctx, so a flight debit and a
// booking insert made through fn commit or roll back together.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// FlightQuery selects flights on Date; empty fields are unconstrained.
type FlightQuery struct {
	Origin      string
	Destination string
	Date        time.Time
	Category    domain.CargoCategory
}

type FlightRepository interface {
	Transactor
	Create(ctx context.Context, flight *domain.Flight) error
	List(ctx context.Context) ([]domain.Flight, error)
	ListMinCapacity(ctx context.Context, minCapacity int) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	// GetForUpdate reads a flight and, inside a transaction, locks its row.
	GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, q FlightQuery) ([]domain.Flight, error)
	// DebitCapacity decrements remaining by weight only if remaining >= weight.
	DebitCapacity(ctx context.Context, flightID int64, weight int) error
	// CreditCapacity increments remaining by weight, capped at the declared capacity.
	CreditCapacity(ctx context.Context, flightID int64, weight int) error
}

type BookingRepository interface {
	Transactor
	Insert(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByToken(ctx context.Context, token string) (*domain.Booking, error)
	// GetForUpdate reads a booking and, inside a transaction, locks its row.
	GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	// TransitionStatus moves a booking from → to only if it is currently in from.
	// It returns ErrInvalidTransition when the booking is in any other state.
	TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error)
	ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
}

type MessageRepository interface {
	Post(ctx context.Context, msg *domain.Message) error
	// List returns the newest limit messages, oldest first.
	List(ctx context.Context, limit int) ([]domain.Message, error)
}
