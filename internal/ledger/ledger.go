// Package ledger owns flight remaining capacity. Every method is expected to
// run inside the caller's store transaction, so a debit or credit commits
// together with the booking status write it belongs to.
package ledger

import (
	"context"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/rs/zerolog"
)

type Store interface {
	GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error)
	DebitCapacity(ctx context.Context, flightID int64, weight int) error
	CreditCapacity(ctx context.Context, flightID int64, weight int) error
}

type Ledger struct {
	store Store
	log   zerolog.Logger
}

func New(store Store, logger zerolog.Logger) *Ledger {
	return &Ledger{store: store, log: logger.With().Str("component", "ledger").Logger()}
}

// Lookup returns the flight and, inside a transaction, locks it until commit.
func (l *Ledger) Lookup(ctx context.Context, flightID int64) (*domain.Flight, error) {
	return l.store.GetForUpdate(ctx, flightID)
}

// Debit takes weight kg from the flight. It fails with ErrInsufficientCapacity
// and leaves the flight untouched when weight exceeds what remains.
func (l *Ledger) Debit(ctx context.Context, flightID int64, weight int) error {
	if weight <= 0 {
		return domain.NewValidationError("weight", "must be greater than 0")
	}
	if err := l.store.DebitCapacity(ctx, flightID, weight); err != nil {
		return err
	}
	l.log.Debug().Int64("flight_id", flightID).Int("weight", weight).Msg("capacity debited")
	return nil
}

// Credit returns weight kg to the flight, never above its declared capacity.
func (l *Ledger) Credit(ctx context.Context, flightID int64, weight int) error {
	if weight <= 0 {
		return domain.NewValidationError("weight", "must be greater than 0")
	}
	if err := l.store.CreditCapacity(ctx, flightID, weight); err != nil {
		return err
	}
	l.log.Debug().Int64("flight_id", flightID).Int("weight", weight).Msg("capacity credited")
	return nil
}
