package messaging

import (
	"context"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"

	"go.uber.org/zap"
)

var _ interfaces.StoryEventPublisher = (*nopPublisher)(nil)

type nopPublisher struct {
	logger *zap.Logger
}

// NewNopPublisher returns a publisher that only logs events. Used when RABBITMQ_URL is empty.
func NewNopPublisher(logger *zap.Logger) interfaces.StoryEventPublisher {
	return &nopPublisher{logger: logger.Named("NopStoryEventPublisher")}
}

func (p *nopPublisher) PublishStoryEvent(_ context.Context, event models.StoryEvent) error {
	p.logger.Debug("Story event dropped (publisher disabled)",
		zap.String("type", string(event.Type)), zap.String("storyID", event.StoryID))
	return nil
}
