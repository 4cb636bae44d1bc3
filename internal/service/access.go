package service

import (
	"context"
	"fmt"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"

	"go.uber.org/zap"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// canAuthor: автор истории или модератор.
func canAuthor(actor models.Actor, s *models.Story) bool {
	return actor.UID != "" && (actor.UID == s.AuthorID || actor.IsModerator())
}

// canRead: одобренные истории видны всем, остальные только автору и модераторам.
func canRead(actor models.Actor, s *models.Story) bool {
	return s.Status == models.StatusApproved || canAuthor(actor, s)
}

func loadForAuthoring(ctx context.Context, repo interfaces.StoryRepository, actor models.Actor, storyID string) (*models.Story, error) {
	s, err := repo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if !canAuthor(actor, s) {
		return nil, fmt.Errorf("%w: user %s cannot edit story %s", models.ErrForbidden, actor.UID, storyID)
	}
	return s, nil
}

func loadForReading(ctx context.Context, repo interfaces.StoryRepository, actor models.Actor, storyID string) (*models.Story, error) {
	s, err := repo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if !canRead(actor, s) {
		// Неопубликованная чужая история выглядит как отсутствующая.
		return nil, fmt.Errorf("%w: %s", models.ErrStoryNotFound, storyID)
	}
	return s, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// publish отправляет событие; ошибка публикации не ломает уже выполненную операцию.
func publish(ctx context.Context, p interfaces.StoryEventPublisher, logger *zap.Logger, event models.StoryEvent) {
	if err := p.PublishStoryEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish story event",
			zap.String("type", string(event.Type)), zap.String("storyID", event.StoryID), zap.Error(err))
	}
}
