package domain

import "time"

type Thread struct {
	ID          string    `db:"id"`
	ListingID   *int64    `db:"listing_id"`
	LastUpdated time.Time `db:"last_updated"`
	CreatedAt   time.Time `db:"created_at"`
}
