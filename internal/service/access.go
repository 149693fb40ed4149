package service

import (
	"context"

	"github.com/wedding-dream/messaging-service/internal/domain"

	"github.com/google/uuid"
)

// authorizeParticipant — единая проверка членства для всех thread-scoped
// операций. Не-участник получает ErrThreadNotFound, а не "forbidden":
// посторонним не подтверждаем существование треда.
func authorizeParticipant(ctx context.Context, threads ThreadRepo, threadID string, userID int64) error {
	if _, err := uuid.Parse(threadID); err != nil {
		return domain.ErrThreadNotFound
	}
	ok, err := threads.IsParticipant(ctx, threadID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrThreadNotFound
	}
	return nil
}
