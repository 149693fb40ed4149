package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wedding-dream/messaging-service/internal/domain"
	"github.com/wedding-dream/messaging-service/internal/postgres"
)

type ThreadRepo interface {
	GetOrCreate(ctx context.Context, listingID *int64, userID int64) (*domain.Thread, bool, error)
	Get(ctx context.Context, id string) (*domain.Thread, error)
	AddParticipant(ctx context.Context, threadID string, userID int64) error
	IsParticipant(ctx context.Context, threadID string, userID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64) ([]postgres.ThreadListRow, error)
	IncrementUnreadForOthers(ctx context.Context, threadID string, senderID int64) error
	MarkRead(ctx context.Context, threadID string, userID int64) error
	UnreadFor(ctx context.Context, threadID string, userID int64) (int64, error)
}

type ListingRepo interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type ThreadService struct {
	threads  ThreadRepo
	listings ListingRepo
}

func NewThreadService(threads ThreadRepo, listings ListingRepo) *ThreadService {
	return &ThreadService{threads: threads, listings: listings}
}

// Start возвращает существующий тред инициатора по листингу или создаёт
// новый. counterpartID (владелец листинга) добавляется участником сразу,
// чтобы получать сообщения и unread с первого же ответа.
func (s *ThreadService) Start(ctx context.Context, listingID, counterpartID *int64, userID int64) (*domain.Thread, bool, error) {
	if listingID != nil {
		exists, err := s.listings.Exists(ctx, *listingID)
		if err != nil {
			return nil, false, fmt.Errorf("listings.Exists: %w", err)
		}
		if !exists {
			return nil, false, domain.ErrListingNotFound
		}
	}

	thread, created, err := s.threads.GetOrCreate(ctx, listingID, userID)
	if err != nil {
		return nil, false, fmt.Errorf("threads.GetOrCreate: %w", err)
	}

	if counterpartID != nil && *counterpartID != userID {
		if err := s.threads.AddParticipant(ctx, thread.ID, *counterpartID); err != nil {
			return nil, false, fmt.Errorf("threads.AddParticipant: %w", err)
		}
	}

	return thread, created, nil
}

func (s *ThreadService) ListMine(ctx context.Context, userID int64) ([]postgres.ThreadListRow, error) {
	return s.threads.ListForUser(ctx, userID)
}

// Detail отдаёт тред участнику; посторонним — ErrThreadNotFound.
func (s *ThreadService) Detail(ctx context.Context, threadID string, userID int64) (*domain.Thread, int64, error) {
	if err := authorizeParticipant(ctx, s.threads, threadID, userID); err != nil {
		return nil, 0, err
	}
	thread, err := s.threads.Get(ctx, threadID)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.threads.UnreadFor(ctx, threadID, userID)
	if err != nil {
		slog.Warn("thread unread lookup failed", "thread", threadID, "user", userID, "err", err)
		unread = 0
	}
	return thread, unread, nil
}

// MarkRead идемпотентен: повторный вызов оставляет счётчик на нуле.
func (s *ThreadService) MarkRead(ctx context.Context, threadID string, userID int64) error {
	if err := authorizeParticipant(ctx, s.threads, threadID, userID); err != nil {
		return err
	}
	return s.threads.MarkRead(ctx, threadID, userID)
}

// Authorize — проверка членства для транспорта без деталей об ошибке.
func (s *ThreadService) Authorize(ctx context.Context, threadID string, userID int64) error {
	return authorizeParticipant(ctx, s.threads, threadID, userID)
}
