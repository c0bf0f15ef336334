package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/mattn/go-sqlite3"
)

// OpenSQLite opens (creating if needed) a SQLite database. Transactions start
// with BEGIN IMMEDIATE so the writer lock is held from the first statement.
func OpenSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

type sqliteTxKey struct{}

type sqliteExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func withSQLiteTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if sqliteTxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return translateSQLiteError(fmt.Errorf("begin tx: %w", err))
	}

	txCtx := context.WithValue(ctx, sqliteTxKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return translateSQLiteError(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func sqliteTxFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(sqliteTxKey{}).(*sql.Tx)
	return tx
}

func sqliteConn(ctx context.Context, db *sql.DB) sqliteExecutor {
	if tx := sqliteTxFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

func translateSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked {
			return fmt.Errorf("%w: %w", domain.ErrTxConflict, err)
		}
	}
	return err
}

func toUnix(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
