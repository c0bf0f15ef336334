package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgTxKey struct{}

// pgExecutor is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func withPGTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if pgTxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return translatePGError(fmt.Errorf("begin tx: %w", err))
	}

	txCtx := context.WithValue(ctx, pgTxKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return translatePGError(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func pgTxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(pgTxKey{}).(pgx.Tx)
	return tx
}

func pgConn(ctx context.Context, pool *pgxpool.Pool) pgExecutor {
	if tx := pgTxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// translatePGError maps serialization, deadlock and lock-timeout failures to
// domain.ErrTxConflict while keeping the driver error in the chain.
func translatePGError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %w", domain.ErrTxConflict, err)
		}
	}
	return err
}
