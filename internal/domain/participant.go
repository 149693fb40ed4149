package domain

import "time"

// ThreadParticipant — join-строка (thread, user) со своим счётчиком непрочитанного.
type ThreadParticipant struct {
	ThreadID    string     `db:"thread_id"`
	UserID      int64      `db:"user_id"`
	UnreadCount int64      `db:"unread_count"`
	LastReadAt  *time.Time `db:"last_read_at"`
	JoinedAt    time.Time  `db:"joined_at"`
}
