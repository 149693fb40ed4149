package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wedding-dream/messaging-service/internal/domain"
	"github.com/wedding-dream/messaging-service/internal/postgres"
)

type MessageRepo interface {
	Append(ctx context.Context, threadID string, senderID int64, text string) (*domain.Message, error)
	List(ctx context.Context, threadID string, limit, offset int) ([]domain.Message, error)
	Count(ctx context.Context, threadID string) (int64, error)
}

// Broadcaster — рассылка сохранённого сообщения живым подключениям треда.
// Реализуется ws.Hub; публикация строго после durable append.
type Broadcaster interface {
	Broadcast(threadID string, msg *domain.Message)
}

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type MessageService struct {
	threads     ThreadRepo
	messages    MessageRepo
	broadcaster Broadcaster
	maxLen      int
}

func NewMessageService(threads ThreadRepo, messages MessageRepo, broadcaster Broadcaster, maxLen int) *MessageService {
	if maxLen <= 0 {
		maxLen = 5000
	}
	return &MessageService{
		threads:     threads,
		messages:    messages,
		broadcaster: broadcaster,
		maxLen:      maxLen,
	}
}

// Send — единственный путь записи сообщения; им пользуются и websocket, и
// REST. Порядок фиксирован: append -> unread++ остальным -> broadcast.
// Сообщение не видно другим участникам раньше, чем оно надёжно сохранено.
func (s *MessageService) Send(ctx context.Context, threadID string, senderID int64, text string) (*domain.Message, error) {
	if err := authorizeParticipant(ctx, s.threads, threadID, senderID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}
	if len([]rune(text)) > s.maxLen {
		return nil, domain.ErrMessageTooLong
	}

	msg, err := s.messages.Append(ctx, threadID, senderID, text)
	if err != nil {
		return nil, fmt.Errorf("messages.Append: %w", err)
	}

	// Сообщение уже durable; сбой инкремента — деградация счётчиков,
	// не отказ отправки.
	if err := s.threads.IncrementUnreadForOthers(ctx, threadID, senderID); err != nil {
		slog.Warn("unread increment failed", "thread", threadID, "sender", senderID, "err", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(threadID, msg)
	}

	return msg, nil
}

type PageInfo struct {
	Page     int
	PageSize int
	Total    int64
}

// History — постраничная история треда в хронологическом порядке.
// last=true — шорткат «перейти к самым свежим» (последняя страница).
func (s *MessageService) History(ctx context.Context, threadID string, userID int64, page, pageSize int, last bool) ([]domain.Message, PageInfo, error) {
	if err := authorizeParticipant(ctx, s.threads, threadID, userID); err != nil {
		return nil, PageInfo{}, err
	}

	page, pageSize = postgres.NormalizePage(page, pageSize, defaultPageSize, maxPageSize)

	total, err := s.messages.Count(ctx, threadID)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("messages.Count: %w", err)
	}
	if last {
		page = postgres.LastPage(total, pageSize)
	}

	items, err := s.messages.List(ctx, threadID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("messages.List: %w", err)
	}

	return items, PageInfo{Page: page, PageSize: pageSize, Total: total}, nil
}
