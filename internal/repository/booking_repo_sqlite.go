package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
)

const sqliteBookingColumns = `id, token, user_id, flight_id, weight, status, expires_at, rate, total, payment_status, created_at, updated_at`

type SQLiteBookingRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteBookingRepository(db *sql.DB) BookingRepository {
	return &SQLiteBookingRepository{db: db, now: time.Now}
}

func (r *SQLiteBookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withSQLiteTx(ctx, r.db, fn)
}

func (r *SQLiteBookingRepository) Insert(ctx context.Context, b *domain.Booking) error {
	res, err := sqliteConn(ctx, r.db).ExecContext(ctx, `INSERT INTO bookings (token, user_id, flight_id, weight, status, expires_at, rate, total, payment_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Token, b.UserID, b.FlightID, b.Weight, string(b.Status), toUnix(b.ExpiresAt), b.Rate, b.Total, string(b.PaymentStatus), toUnix(b.CreatedAt), toUnix(b.CreatedAt))
	if err != nil {
		return translateSQLiteError(fmt.Errorf("insert booking: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	b.ID = id
	b.UpdatedAt = b.CreatedAt
	return nil
}

func (r *SQLiteBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+sqliteBookingColumns+` FROM bookings WHERE id = ?`, id)
}

func (r *SQLiteBookingRepository) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+sqliteBookingColumns+` FROM bookings WHERE token = ?`, token)
}

func (r *SQLiteBookingRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *SQLiteBookingRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error) {
	res, err := sqliteConn(ctx, r.db).ExecContext(ctx, `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), toUnix(r.now()), id, string(from))
	if err != nil {
		return nil, translateSQLiteError(fmt.Errorf("update booking status: %w", err))
	}

	n, _ := res.RowsAffected()
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrInvalidTransition
	}
	return b, nil
}

func (r *SQLiteBookingRepository) ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]domain.Booking, error) {
	return r.query(ctx, `SELECT `+sqliteBookingColumns+` FROM bookings
		WHERE status = ? AND expires_at < ?
		ORDER BY expires_at, id
		LIMIT ?`, string(domain.BookingStatusHold), toUnix(now), limit)
}

func (r *SQLiteBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	var conds []string
	var args []any
	if filter.UserID != 0 {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.FlightID != 0 {
		conds = append(conds, "flight_id = ?")
		args = append(args, filter.FlightID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT ` + sqliteBookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return r.query(ctx, query+` ORDER BY id`, args...)
}

func (r *SQLiteBookingRepository) get(ctx context.Context, query string, args ...any) (*domain.Booking, error) {
	b, err := scanSQLiteBooking(sqliteConn(ctx, r.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, translateSQLiteError(fmt.Errorf("get booking: %w", err))
	}
	return b, nil
}

func (r *SQLiteBookingRepository) query(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := sqliteConn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateSQLiteError(fmt.Errorf("query bookings: %w", err))
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanSQLiteBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanSQLiteBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                               domain.Booking
		status, payment                 string
		expiresAt, createdAt, updatedAt int64
	)
	if err := row.Scan(&b.ID, &b.Token, &b.UserID, &b.FlightID, &b.Weight, &status, &expiresAt, &b.Rate, &b.Total, &payment, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	b.PaymentStatus = domain.PaymentStatus(payment)
	b.ExpiresAt = fromUnix(expiresAt)
	b.CreatedAt = fromUnix(createdAt)
	b.UpdatedAt = fromUnix(updatedAt)
	return &b, nil
}

var _ BookingRepository = (*SQLiteBookingRepository)(nil)
