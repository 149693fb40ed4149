package postgres

import (
	"context"
	"fmt"

	"github.com/wedding-dream/messaging-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ThreadRepository struct {
	db *pgxpool.Pool
}

func NewThreadRepository(db *pgxpool.Pool) *ThreadRepository {
	return &ThreadRepository{db: db}
}

const threadColumns = `id, listing_id, last_updated, created_at`

func scanThread(row pgx.Row) (*domain.Thread, error) {
	var t domain.Thread
	if err := row.Scan(&t.ID, &t.ListingID, &t.LastUpdated, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetOrCreate возвращает тред, где initiator уже участник по данному листингу,
// либо создаёт новый вместе со строкой участника.
// Сериализовано advisory-локом по паре (listing, initiator): два параллельных
// «start conversation» из двух вкладок не создадут два треда.
func (r *ThreadRepository) GetOrCreate(ctx context.Context, listingID *int64, userID int64) (*domain.Thread, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	// один 64-битный ключ: pg_advisory_xact_lock принимает (bigint) либо
	// (int, int), а hashtextextended возвращает bigint
	lockKey := fmt.Sprintf("thread:general|user:%d", userID)
	if listingID != nil {
		lockKey = fmt.Sprintf("thread:listing:%d|user:%d", *listingID, userID)
	}
	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		lockKey); err != nil {
		return nil, false, err
	}

	row := tx.QueryRow(ctx, `
		SELECT t.id, t.listing_id, t.last_updated, t.created_at
		FROM threads t
		JOIN thread_participants p ON p.thread_id = t.id AND p.user_id = $2
		WHERE t.listing_id IS NOT DISTINCT FROM $1
		ORDER BY t.created_at
		LIMIT 1`, listingID, userID)
	t, err := scanThread(row)
	if err == nil {
		return t, false, tx.Commit(ctx)
	}
	if err != pgx.ErrNoRows {
		return nil, false, err
	}

	row = tx.QueryRow(ctx, `
		INSERT INTO threads (listing_id)
		VALUES ($1)
		RETURNING `+threadColumns, listingID)
	t, err = scanThread(row)
	if err != nil {
		return nil, false, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO thread_participants (thread_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, t.ID, userID); err != nil {
		return nil, false, err
	}

	return t, true, tx.Commit(ctx)
}

func (r *ThreadRepository) Get(ctx context.Context, id string) (*domain.Thread, error) {
	t, err := scanThread(r.db.QueryRow(ctx,
		`SELECT `+threadColumns+` FROM threads WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrThreadNotFound
		}
		return nil, err
	}
	return t, nil
}

// AddParticipant создаёт join-строку лениво; повторный вызов — no-op.
func (r *ThreadRepository) AddParticipant(ctx context.Context, threadID string, userID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO thread_participants (thread_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, threadID, userID)
	return err
}

func (r *ThreadRepository) IsParticipant(ctx context.Context, threadID string, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM thread_participants WHERE thread_id = $1 AND user_id = $2)`,
		threadID, userID).Scan(&exists)
	return exists, err
}

type ThreadListRow struct {
	Thread      domain.Thread
	UnreadCount int64
}

// ListForUser возвращает треды, где userID участник, свежие сверху.
func (r *ThreadRepository) ListForUser(ctx context.Context, userID int64) ([]ThreadListRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.listing_id, t.last_updated, t.created_at, p.unread_count
		FROM threads t
		JOIN thread_participants p ON p.thread_id = t.id
		WHERE p.user_id = $1
		ORDER BY t.last_updated DESC, t.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ThreadListRow
	for rows.Next() {
		var row ThreadListRow
		if err := rows.Scan(
			&row.Thread.ID,
			&row.Thread.ListingID,
			&row.Thread.LastUpdated,
			&row.Thread.CreatedAt,
			&row.UnreadCount,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// IncrementUnreadForOthers атомарно поднимает unread_count всем участникам,
// кроме отправителя, и обновляет last_updated треда. Один UPDATE вместо
// read-modify-write — параллельные отправки не теряют инкременты.
func (r *ThreadRepository) IncrementUnreadForOthers(ctx context.Context, threadID string, senderID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE thread_participants
		SET unread_count = unread_count + 1
		WHERE thread_id = $1 AND user_id <> $2`, threadID, senderID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE threads SET last_updated = now() WHERE id = $1`, threadID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// MarkRead сбрасывает собственный счётчик и ставит last_read_at; идемпотентно.
func (r *ThreadRepository) MarkRead(ctx context.Context, threadID string, userID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE thread_participants
		SET unread_count = 0, last_read_at = now()
		WHERE thread_id = $1 AND user_id = $2`, threadID, userID)
	return err
}

func (r *ThreadRepository) UnreadFor(ctx context.Context, threadID string, userID int64) (int64, error) {
	var unread int64
	err := r.db.QueryRow(ctx,
		`SELECT unread_count FROM thread_participants WHERE thread_id = $1 AND user_id = $2`,
		threadID, userID).Scan(&unread)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return unread, err
}
