package interfaces

import (
	"context"

	"story-branches/internal/models"
)

// StoryEventPublisher publishes story mutation events for downstream consumers.
//
//go:generate mockery --name StoryEventPublisher --output ./mocks --outpkg mocks --case=underscore
type StoryEventPublisher interface {
	PublishStoryEvent(ctx context.Context, event models.StoryEvent) error
}
