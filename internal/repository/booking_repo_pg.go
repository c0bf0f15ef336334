package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgBookingColumns = `id, token, user_id, flight_id, weight, status, expires_at, rate, total, payment_status, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withPGTx(ctx, r.db, fn)
}

func (r *PGBookingRepository) Insert(ctx context.Context, b *domain.Booking) error {
	err := pgConn(ctx, r.db).QueryRow(ctx, `INSERT INTO bookings (token, user_id, flight_id, weight, status, expires_at, rate, total, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id`,
		b.Token, b.UserID, b.FlightID, b.Weight, b.Status, b.ExpiresAt, b.Rate, b.Total, b.PaymentStatus, b.CreatedAt).
		Scan(&b.ID)
	if err != nil {
		return translatePGError(fmt.Errorf("insert booking: %w", err))
	}
	b.UpdatedAt = b.CreatedAt
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+pgBookingColumns+` FROM bookings WHERE id=$1`, id)
}

func (r *PGBookingRepository) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+pgBookingColumns+` FROM bookings WHERE token=$1`, token)
}

func (r *PGBookingRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	if pgTxFromContext(ctx) == nil {
		return r.GetByID(ctx, id)
	}
	return r.get(ctx, `SELECT `+pgBookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, id)
}

func (r *PGBookingRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error) {
	b, err := scanPGBooking(pgConn(ctx, r.db).QueryRow(ctx, `UPDATE bookings SET status=$3, updated_at=now()
		WHERE id=$1 AND status=$2
		RETURNING `+pgBookingColumns, id, from, to))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, translatePGError(fmt.Errorf("update booking status: %w", err))
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrInvalidTransition
}

func (r *PGBookingRepository) ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]domain.Booking, error) {
	return r.query(ctx, `SELECT `+pgBookingColumns+` FROM bookings
		WHERE status=$1 AND expires_at < $2
		ORDER BY expires_at, id
		LIMIT $3`, domain.BookingStatusHold, now, limit)
}

func (r *PGBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	var conds []string
	var args []any
	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.FlightID != 0 {
		args = append(args, filter.FlightID)
		conds = append(conds, fmt.Sprintf("flight_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	sql := `SELECT ` + pgBookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		sql += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return r.query(ctx, sql+` ORDER BY id`, args...)
}

func (r *PGBookingRepository) get(ctx context.Context, sql string, args ...any) (*domain.Booking, error) {
	b, err := scanPGBooking(pgConn(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, translatePGError(fmt.Errorf("get booking: %w", err))
	}
	return b, nil
}

func (r *PGBookingRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Booking, error) {
	rows, err := pgConn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, translatePGError(fmt.Errorf("query bookings: %w", err))
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanPGBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanPGBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.Token, &b.UserID, &b.FlightID, &b.Weight, &b.Status, &b.ExpiresAt, &b.Rate, &b.Total, &b.PaymentStatus, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
