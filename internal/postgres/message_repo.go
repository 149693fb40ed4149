package postgres

import (
	"context"

	"github.com/wedding-dream/messaging-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append пишет сообщение со серверной меткой времени. Update/delete нет:
// сообщения неизменяемы.
func (r *MessageRepository) Append(ctx context.Context, threadID string, senderID int64, text string) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO messages (thread_id, sender_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, thread_id, sender_id, text, created_at
	`, threadID, senderID, text)

	var m domain.Message
	if err := row.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Text, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// List — хронологический порядок (created_at, id): id — стабильный
// tie-break для записей с одинаковой миллисекундой.
func (r *MessageRepository) List(ctx context.Context, threadID string, limit, offset int) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, thread_id, sender_id, text, created_at
		FROM messages
		WHERE thread_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`, threadID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MessageRepository) Count(ctx context.Context, threadID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE thread_id = $1`, threadID).Scan(&count)
	return count, err
}
