package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type StartThreadRequest struct {
	ListingID     *int64 `json:"listing_id,omitempty"`
	ParticipantID *int64 `json:"participant_id,omitempty"`
}

type ThreadItem struct {
	ID          string    `json:"id"`
	ListingID   *int64    `json:"listing_id,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
	UnreadCount int64     `json:"unread_count"`
}

type ThreadsListResponse struct {
	Items []ThreadItem `json:"items"`
}

// MessageItem — sender резолвится относительно запрашивающего, как и в
// websocket-фрейме.
type MessageItem struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Sender    string    `json:"sender"` // me|other
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type ThreadDetailResponse struct {
	ThreadItem
	Messages []MessageItem `json:"messages"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int64         `json:"total_messages"`
}

type MessagesListResponse struct {
	Items    []MessageItem `json:"items"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int64         `json:"total"`
}

type PostMessageRequest struct {
	Text string `json:"text"`
}

type StartThreadResponse struct {
	ThreadItem
	Created bool `json:"created"`
}

type ContactRequestBody struct {
	ListingID    int64  `json:"listing_id"`
	Name         string `json:"name"`
	EmailOrPhone string `json:"email_or_phone"`
	Message      string `json:"message"`
}

type ContactResponse struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}
