package domain

import "errors"

var (
	// ErrThreadNotFound возвращается и для чужих тредов: не раскрываем
	// посторонним сам факт существования треда.
	ErrThreadNotFound  = errors.New("thread not found")
	ErrListingNotFound = errors.New("listing not found")
	ErrNotParticipant  = errors.New("user is not a thread participant")
	ErrEmptyMessage    = errors.New("empty message")
	ErrMessageTooLong  = errors.New("message too long")
	ErrInvalidPage     = errors.New("invalid page")
	ErrRateLimited     = errors.New("rate limited")
)
