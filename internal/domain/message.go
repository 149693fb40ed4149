package domain

import "time"

// Message неизменяемо после создания; порядок — (created_at, id).
type Message struct {
	ID        string    `db:"id"`
	ThreadID  string    `db:"thread_id"`
	SenderID  int64     `db:"sender_id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}
