package postgres

import (
	"context"

	"github.com/wedding-dream/messaging-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactRepository struct {
	db *pgxpool.Pool
}

func NewContactRepository(db *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, c *domain.ContactRequest) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO contact_requests (listing_id, name, email_or_phone, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, c.ListingID, c.Name, c.EmailOrPhone, c.Message).Scan(&c.ID, &c.CreatedAt)
}
