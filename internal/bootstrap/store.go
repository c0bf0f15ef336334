package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Domenick1991/cargobooking/config"
	"github.com/Domenick1991/cargobooking/internal/migrations"
	"github.com/Domenick1991/cargobooking/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Store bundles the repositories of one backend so they share transactions.
type Store struct {
	Flights  repository.FlightRepository
	Bookings repository.BookingRepository
	Messages repository.MessageRepository
	close    func()
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStore connects the configured backend and applies its migrations.
func OpenStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		return openPostgres(ctx, cfg.Database, logger)
	case config.StoreDriverSQLite:
		return openSQLite(ctx, cfg.SQLite, logger)
	case config.StoreDriverMemory:
		logger.Warn().Msg("using in-memory store, data is lost on restart")
		mem := repository.NewMemoryStore()
		return &Store{Flights: mem.Flights(), Bookings: mem.Bookings(), Messages: mem.Messages()}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	logger.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("postgres store ready")
	return &Store{
		Flights:  repository.NewFlightRepository(pool),
		Bookings: repository.NewBookingRepository(pool),
		Messages: repository.NewMessageRepository(pool),
		close:    pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, cfg config.SQLiteConfig, logger zerolog.Logger) (*Store, error) {
	db, err := repository.OpenSQLite(cfg.Path)
	if err != nil {
		return nil, err
	}
	if err := migrations.ApplySQLite(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	logger.Info().Str("path", cfg.Path).Msg("sqlite store ready")
	return &Store{
		Flights:  repository.NewSQLiteFlightRepository(db),
		Bookings: repository.NewSQLiteBookingRepository(db),
		Messages: repository.NewSQLiteMessageRepository(db),
		close:    func() { closeSQLite(db, logger) },
	}, nil
}

func closeSQLite(db *sql.DB, logger zerolog.Logger) {
	if err := db.Close(); err != nil {
		logger.Warn().Err(err).Msg("close sqlite")
	}
}
