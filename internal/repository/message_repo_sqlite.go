package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
)

type SQLiteMessageRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteMessageRepository(db *sql.DB) MessageRepository {
	return &SQLiteMessageRepository{db: db, now: time.Now}
}

func (r *SQLiteMessageRepository) Post(ctx context.Context, msg *domain.Message) error {
	now := r.now().UTC()
	res, err := sqliteConn(ctx, r.db).ExecContext(ctx, `INSERT INTO messages (sender, text, created_at) VALUES (?, ?, ?)`,
		msg.Sender, msg.Text, toUnix(now))
	if err != nil {
		return translateSQLiteError(fmt.Errorf("insert message: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	msg.ID = id
	msg.CreatedAt = now
	return nil
}

func (r *SQLiteMessageRepository) List(ctx context.Context, limit int) ([]domain.Message, error) {
	query := `SELECT id, sender, text, created_at FROM messages ORDER BY id`
	args := []any{}
	if limit > 0 {
		query = `SELECT id, sender, text, created_at FROM (
			SELECT id, sender, text, created_at FROM messages ORDER BY id DESC LIMIT ?
		) ORDER BY id`
		args = append(args, limit)
	}

	rows, err := sqliteConn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateSQLiteError(fmt.Errorf("query messages: %w", err))
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var (
			m       domain.Message
			created int64
		)
		if err := rows.Scan(&m.ID, &m.Sender, &m.Text, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = fromUnix(created)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

var _ MessageRepository = (*SQLiteMessageRepository)(nil)
