package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgFlightColumns = `id, carrier, flight_number, origin, destination, flight_date, capacity, remaining, category, created_at, updated_at`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withPGTx(ctx, r.db, fn)
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	err := pgConn(ctx, r.db).QueryRow(ctx, `INSERT INTO flights (carrier, flight_number, origin, destination, flight_date, capacity, remaining, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		f.Carrier, f.FlightNumber, f.Origin, f.Destination, f.Date, f.Capacity, f.Remaining, f.Category).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return translatePGError(fmt.Errorf("insert flight: %w", err))
	}
	return nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	return r.query(ctx, `SELECT `+pgFlightColumns+` FROM flights ORDER BY flight_date, id`)
}

func (r *PGFlightRepository) ListMinCapacity(ctx context.Context, minCapacity int) ([]domain.Flight, error) {
	return r.query(ctx, `SELECT `+pgFlightColumns+` FROM flights WHERE remaining > $1 ORDER BY flight_date, id`, minCapacity)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.get(ctx, `SELECT `+pgFlightColumns+` FROM flights WHERE id=$1`, id)
}

func (r *PGFlightRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Flight, error) {
	if pgTxFromContext(ctx) == nil {
		return r.GetByID(ctx, id)
	}
	return r.get(ctx, `SELECT `+pgFlightColumns+` FROM flights WHERE id=$1 FOR UPDATE`, id)
}

func (r *PGFlightRepository) Search(ctx context.Context, q FlightQuery) ([]domain.Flight, error) {
	conds := []string{"flight_date = $1"}
	args := []any{q.Date}
	if q.Origin != "" {
		args = append(args, q.Origin)
		conds = append(conds, fmt.Sprintf("origin = $%d", len(args)))
	}
	if q.Destination != "" {
		args = append(args, q.Destination)
		conds = append(conds, fmt.Sprintf("destination = $%d", len(args)))
	}
	if q.Category != "" {
		args = append(args, q.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	return r.query(ctx, `SELECT `+pgFlightColumns+` FROM flights WHERE `+strings.Join(conds, " AND ")+` ORDER BY id`, args...)
}

func (r *PGFlightRepository) DebitCapacity(ctx context.Context, flightID int64, weight int) error {
	conn := pgConn(ctx, r.db)
	res, err := conn.Exec(ctx, `UPDATE flights SET remaining = remaining - $2, updated_at = now() WHERE id=$1 AND remaining >= $2`, flightID, weight)
	if err != nil {
		return translatePGError(fmt.Errorf("debit capacity: %w", err))
	}
	if res.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id=$1)`, flightID).Scan(&exists); err != nil {
		return translatePGError(fmt.Errorf("check flight: %w", err))
	}
	if !exists {
		return domain.ErrFlightNotFound
	}
	return domain.ErrInsufficientCapacity
}

func (r *PGFlightRepository) CreditCapacity(ctx context.Context, flightID int64, weight int) error {
	res, err := pgConn(ctx, r.db).Exec(ctx, `UPDATE flights SET remaining = LEAST(remaining + $2, capacity), updated_at = now() WHERE id=$1`, flightID, weight)
	if err != nil {
		return translatePGError(fmt.Errorf("credit capacity: %w", err))
	}
	if res.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func (r *PGFlightRepository) get(ctx context.Context, sql string, args ...any) (*domain.Flight, error) {
	f, err := scanPGFlight(pgConn(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, translatePGError(fmt.Errorf("get flight: %w", err))
	}
	return f, nil
}

func (r *PGFlightRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Flight, error) {
	rows, err := pgConn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, translatePGError(fmt.Errorf("query flights: %w", err))
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanPGFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func scanPGFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.Carrier, &f.FlightNumber, &f.Origin, &f.Destination, &f.Date, &f.Capacity, &f.Remaining, &f.Category, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Date = domain.Day(f.Date)
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
