package domain

import "time"

type ContactRequest struct {
	ID           int64     `db:"id"`
	ListingID    int64     `db:"listing_id"`
	Name         string    `db:"name"`
	EmailOrPhone string    `db:"email_or_phone"`
	Message      string    `db:"message"`
	CreatedAt    time.Time `db:"created_at"`
}
