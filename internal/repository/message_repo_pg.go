package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGMessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) MessageRepository {
	return &PGMessageRepository{db: db}
}

func (r *PGMessageRepository) Post(ctx context.Context, msg *domain.Message) error {
	err := pgConn(ctx, r.db).QueryRow(ctx, `INSERT INTO messages (sender, text) VALUES ($1, $2) RETURNING id, created_at`,
		msg.Sender, msg.Text).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return translatePGError(fmt.Errorf("insert message: %w", err))
	}
	msg.CreatedAt = msg.CreatedAt.UTC()
	return nil
}

func (r *PGMessageRepository) List(ctx context.Context, limit int) ([]domain.Message, error) {
	sql := `SELECT id, sender, text, created_at FROM messages ORDER BY id`
	args := []any{}
	if limit > 0 {
		sql = `SELECT id, sender, text, created_at FROM (
			SELECT id, sender, text, created_at FROM messages ORDER BY id DESC LIMIT $1
		) newest ORDER BY id`
		args = append(args, limit)
	}

	rows, err := pgConn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, translatePGError(fmt.Errorf("query messages: %w", err))
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = m.CreatedAt.UTC()
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

var _ MessageRepository = (*PGMessageRepository)(nil)
