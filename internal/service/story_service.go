package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"
	"story-branches/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

// StoryService управляет метаданными историй и их жизненным циклом.
type StoryService interface {
	CreateStory(ctx context.Context, actor models.Actor, title, description string) (*models.Story, error)
	GetStory(ctx context.Context, actor models.Actor, storyID string) (*models.Story, error)
	ListMyStories(ctx context.Context, actor models.Actor, limit, offset int) ([]models.StorySummary, error)
	ListPublicStories(ctx context.Context, limit, offset int) ([]models.StorySummary, error)
	ListPendingStories(ctx context.Context, actor models.Actor, limit, offset int) ([]models.StorySummary, error)
	UpdateMetadata(ctx context.Context, actor models.Actor, storyID, title, description string) (*models.Story, error)
	DeleteStory(ctx context.Context, actor models.Actor, storyID string) error
	SubmitForReview(ctx context.Context, actor models.Actor, storyID string) (*models.Story, error)
	Moderate(ctx context.Context, actor models.Actor, storyID string, approve bool) (*models.Story, error)
	UploadCover(ctx context.Context, actor models.Actor, storyID, contentType string, r io.Reader) (*models.Story, error)
}

type storyServiceImpl struct {
	repo      interfaces.StoryRepository
	publisher interfaces.StoryEventPublisher
	images    interfaces.ImageStore
	logger    *zap.Logger
}

// NewStoryService creates the story lifecycle service.
func NewStoryService(
	repo interfaces.StoryRepository,
	publisher interfaces.StoryEventPublisher,
	images interfaces.ImageStore,
	logger *zap.Logger,
) StoryService {
	return &storyServiceImpl{
		repo:      repo,
		publisher: publisher,
		images:    images,
		logger:    logger.Named("StoryService"),
	}
}

func (s *storyServiceImpl) CreateStory(ctx context.Context, actor models.Actor, title, description string) (*models.Story, error) {
	if actor.UID == "" {
		return nil, models.ErrUnauthorized
	}
	title, description, err := validateMetadata(title, description)
	if err != nil {
		return nil, err
	}

	story := &models.Story{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		AuthorID:    actor.UID,
		Status:      models.StatusDraft,
		Branches:    []models.Branch{},
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, story); err != nil {
		return nil, fmt.Errorf("ошибка создания истории: %w", err)
	}
	storiesCreatedTotal.Inc()
	s.logger.Info("Story created", zap.String("storyID", story.ID), zap.String("authorID", actor.UID))

	publish(ctx, s.publisher, s.logger, models.StoryEvent{
		Type:    models.EventStoryCreated,
		StoryID: story.ID,
		ActorID: actor.UID,
		Status:  story.Status,
	})
	return story, nil
}

func (s *storyServiceImpl) GetStory(ctx context.Context, actor models.Actor, storyID string) (*models.Story, error) {
	return loadForReading(ctx, s.repo, actor, storyID)
}

func (s *storyServiceImpl) ListMyStories(ctx context.Context, actor models.Actor, limit, offset int) ([]models.StorySummary, error) {
	if actor.UID == "" {
		return nil, models.ErrUnauthorized
	}
	limit, offset = normalizePage(limit, offset)
	return s.repo.ListByAuthor(ctx, actor.UID, limit, offset)
}

func (s *storyServiceImpl) ListPublicStories(ctx context.Context, limit, offset int) ([]models.StorySummary, error) {
	limit, offset = normalizePage(limit, offset)
	return s.repo.ListByStatus(ctx, models.StatusApproved, limit, offset)
}

func (s *storyServiceImpl) ListPendingStories(ctx context.Context, actor models.Actor, limit, offset int) ([]models.StorySummary, error) {
	if !actor.IsModerator() {
		return nil, fmt.Errorf("%w: moderator role required", models.ErrForbidden)
	}
	limit, offset = normalizePage(limit, offset)
	return s.repo.ListByStatus(ctx, models.StatusPending, limit, offset)
}

func (s *storyServiceImpl) UpdateMetadata(ctx context.Context, actor models.Actor, storyID, title, description string) (*models.Story, error) {
	if _, err := loadForAuthoring(ctx, s.repo, actor, storyID); err != nil {
		return nil, err
	}
	title, description, err := validateMetadata(title, description)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateMetadata(ctx, storyID, title, description)
}

func (s *storyServiceImpl) DeleteStory(ctx context.Context, actor models.Actor, storyID string) error {
	if _, err := loadForAuthoring(ctx, s.repo, actor, storyID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, storyID); err != nil {
		return err
	}
	s.logger.Info("Story deleted", zap.String("storyID", storyID), zap.String("actorID", actor.UID))
	publish(ctx, s.publisher, s.logger, models.StoryEvent{
		Type:    models.EventStoryDeleted,
		StoryID: storyID,
		ActorID: actor.UID,
	})
	return nil
}

// SubmitForReview отправляет черновик (или отклоненную историю) на модерацию.
// Отправить может только автор.
func (s *storyServiceImpl) SubmitForReview(ctx context.Context, actor models.Actor, storyID string) (*models.Story, error) {
	story, err := s.repo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.AuthorID != actor.UID {
		return nil, fmt.Errorf("%w: only the author can submit a story", models.ErrForbidden)
	}
	if len(story.Branches) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrEmptyStory, storyID)
	}
	return s.transition(ctx, actor, story, models.StatusPending)
}

// Moderate одобряет или отклоняет историю на модерации.
func (s *storyServiceImpl) Moderate(ctx context.Context, actor models.Actor, storyID string, approve bool) (*models.Story, error) {
	if !actor.IsModerator() {
		return nil, fmt.Errorf("%w: moderator role required", models.ErrForbidden)
	}
	story, err := s.repo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	to := models.StatusRejected
	if approve {
		to = models.StatusApproved
	}
	return s.transition(ctx, actor, story, to)
}

func (s *storyServiceImpl) transition(ctx context.Context, actor models.Actor, story *models.Story, to models.StoryStatus) (*models.Story, error) {
	if !models.CanTransition(story.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidStatusTransition, story.Status, to)
	}
	updated, err := s.repo.UpdateStatus(ctx, story.ID, to)
	if err != nil {
		return nil, err
	}
	statusTransitionsTotal.WithLabelValues(string(to)).Inc()
	s.logger.Info("Story status changed",
		zap.String("storyID", story.ID),
		zap.String("from", string(story.Status)),
		zap.String("to", string(to)),
		zap.String("actorID", actor.UID),
	)
	publish(ctx, s.publisher, s.logger, models.StoryEvent{
		Type:    models.EventStoryStatusChanged,
		StoryID: story.ID,
		ActorID: actor.UID,
		Status:  to,
	})
	return updated, nil
}

func (s *storyServiceImpl) UploadCover(ctx context.Context, actor models.Actor, storyID, contentType string, r io.Reader) (*models.Story, error) {
	if _, err := loadForAuthoring(ctx, s.repo, actor, storyID); err != nil {
		return nil, err
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", models.ErrInvalidInput, contentType)
	}

	objectName := storage.ObjectName(storyID, "cover_"+uuid.NewString()[:8], ext)
	url, err := s.images.Upload(ctx, objectName, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки обложки: %w", err)
	}
	return s.repo.UpdateCoverImage(ctx, storyID, url)
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

func validateMetadata(title, description string) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return "", "", fmt.Errorf("%w: title is required", models.ErrInvalidInput)
	}
	if len([]rune(title)) > maxTitleLength {
		return "", "", fmt.Errorf("%w: title is longer than %d characters", models.ErrInvalidInput, maxTitleLength)
	}
	if len([]rune(description)) > maxDescriptionLength {
		return "", "", fmt.Errorf("%w: description is longer than %d characters", models.ErrInvalidInput, maxDescriptionLength)
	}
	return title, description, nil
}
