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

const sqliteFlightColumns = `id, carrier, flight_number, origin, destination, flight_date, capacity, remaining, category, created_at, updated_at`

type SQLiteFlightRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteFlightRepository(db *sql.DB) FlightRepository {
	return &SQLiteFlightRepository{db: db, now: time.Now}
}

func (r *SQLiteFlightRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withSQLiteTx(ctx, r.db, fn)
}

func (r *SQLiteFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	now := r.now().UTC()
	res, err := sqliteConn(ctx, r.db).ExecContext(ctx, `INSERT INTO flights (carrier, flight_number, origin, destination, flight_date, capacity, remaining, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Carrier, f.FlightNumber, f.Origin, f.Destination, domain.FormatDate(f.Date), f.Capacity, f.Remaining, string(f.Category), toUnix(now), toUnix(now))
	if err != nil {
		return translateSQLiteError(fmt.Errorf("insert flight: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert flight: %w", err)
	}
	f.ID = id
	f.CreatedAt = now
	f.UpdatedAt = now
	return nil
}

func (r *SQLiteFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	return r.query(ctx, `SELECT `+sqliteFlightColumns+` FROM flights ORDER BY flight_date, id`)
}

func (r *SQLiteFlightRepository) ListMinCapacity(ctx context.Context, minCapacity int) ([]domain.Flight, error) {
	return r.query(ctx, `SELECT `+sqliteFlightColumns+` FROM flights WHERE remaining > ? ORDER BY flight_date, id`, minCapacity)
}

func (r *SQLiteFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanSQLiteFlight(sqliteConn(ctx, r.db).QueryRowContext(ctx, `SELECT `+sqliteFlightColumns+` FROM flights WHERE id=?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, translateSQLiteError(fmt.Errorf("get flight: %w", err))
	}
	return f, nil
}

// GetForUpdate needs no row lock: transactions already hold the database write lock.
func (r *SQLiteFlightRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.GetByID(ctx, id)
}

func (r *SQLiteFlightRepository) Search(ctx context.Context, q FlightQuery) ([]domain.Flight, error) {
	conds := []string{"flight_date = ?"}
	args := []any{domain.FormatDate(q.Date)}
	if q.Origin != "" {
		conds = append(conds, "origin = ?")
		args = append(args, q.Origin)
	}
	if q.Destination != "" {
		conds = append(conds, "destination = ?")
		args = append(args, q.Destination)
	}
	if q.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(q.Category))
	}
	return r.query(ctx, `SELECT `+sqliteFlightColumns+` FROM flights WHERE `+strings.Join(conds, " AND ")+` ORDER BY id`, args...)
}

func (r *SQLiteFlightRepository) DebitCapacity(ctx context.Context, flightID int64, weight int) error {
	conn := sqliteConn(ctx, r.db)
	res, err := conn.ExecContext(ctx, `UPDATE flights SET remaining = remaining - ?, updated_at = ? WHERE id = ? AND remaining >= ?`,
		weight, toUnix(r.now()), flightID, weight)
	if err != nil {
		return translateSQLiteError(fmt.Errorf("debit capacity: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}

	var exists bool
	if err := conn.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id = ?)`, flightID).Scan(&exists); err != nil {
		return translateSQLiteError(fmt.Errorf("check flight: %w", err))
	}
	if !exists {
		return domain.ErrFlightNotFound
	}
	return domain.ErrInsufficientCapacity
}

func (r *SQLiteFlightRepository) CreditCapacity(ctx context.Context, flightID int64, weight int) error {
	res, err := sqliteConn(ctx, r.db).ExecContext(ctx, `UPDATE flights SET remaining = MIN(remaining + ?, capacity), updated_at = ? WHERE id = ?`,
		weight, toUnix(r.now()), flightID)
	if err != nil {
		return translateSQLiteError(fmt.Errorf("credit capacity: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func (r *SQLiteFlightRepository) query(ctx context.Context, query string, args ...any) ([]domain.Flight, error) {
	rows, err := sqliteConn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateSQLiteError(fmt.Errorf("query flights: %w", err))
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanSQLiteFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteFlight(row rowScanner) (*domain.Flight, error) {
	var (
		f                    domain.Flight
		date, category       string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&f.ID, &f.Carrier, &f.FlightNumber, &f.Origin, &f.Destination, &date, &f.Capacity, &f.Remaining, &category, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse flight date %q: %w", date, err)
	}
	f.Date = d
	f.Category = domain.CargoCategory(category)
	f.CreatedAt = fromUnix(createdAt)
	f.UpdatedAt = fromUnix(updatedAt)
	return &f, nil
}

var _ FlightRepository = (*SQLiteFlightRepository)(nil)
