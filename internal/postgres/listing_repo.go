package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ListingRepository — граница с каталогом: нам нужен только факт
// существования листинга, таблица живёт в той же базе.
type ListingRepository struct {
	db *pgxpool.Pool
}

func NewListingRepository(db *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM listings WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
