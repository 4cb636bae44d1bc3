package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure the decorator satisfies StoryRepository.
var _ interfaces.StoryRepository = (*cachedStoryRepository)(nil)

const (
	storyKeyPrefix = "story:"
	storyGenPrefix = "story-gen:"
)

// cachedStoryRepository кэширует полные документы историй в Redis.
// Записи всегда идут в нижележащий репозиторий, после успеха ключ удаляется
// и увеличивается счетчик поколения истории. Чтение из БД заполняет кэш только
// если поколение не изменилось за время чтения (WATCH/MULTI), иначе в кэш
// вернулся бы документ, который уже перезаписан.
type cachedStoryRepository struct {
	next   interfaces.StoryRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStoryRepository wraps next with a read-through Redis cache for GetStory.
// Listings are not cached.
func NewCachedStoryRepository(next interfaces.StoryRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) interfaces.StoryRepository {
	return &cachedStoryRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisStoryCache"),
	}
}

func storyKey(id string) string {
	return storyKeyPrefix + id
}

func generationKey(id string) string {
	return storyGenPrefix + id
}

func (c *cachedStoryRepository) GetStory(ctx context.Context, id string) (*models.Story, error) {
	key := storyKey(id)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var story models.Story
		uErr := json.Unmarshal(raw, &story)
		if uErr == nil {
			c.logger.Debug("Story cache hit", zap.String("storyID", id))
			return &story, nil
		}
		c.logger.Warn("Corrupted story cache entry, dropping", zap.String("key", key), zap.Error(uErr))
		c.invalidate(ctx, id)
	case errors.Is(err, redis.Nil):
		c.logger.Debug("Story cache miss", zap.String("storyID", id))
	default:
		// Redis недоступен: работаем напрямую с БД.
		c.logger.Warn("Story cache read failed", zap.String("key", key), zap.Error(err))
		return c.next.GetStory(ctx, id)
	}

	return c.loadAndStore(ctx, id)
}

// loadAndStore читает историю из БД под WATCH на ключ поколения.
// Если запись успела инвалидировать историю, EXEC не проходит и кэш остается пустым.
func (c *cachedStoryRepository) loadAndStore(ctx context.Context, id string) (*models.Story, error) {
	var (
		story   *models.Story
		loadErr error
		loaded  bool
	)
	watchErr := c.client.Watch(ctx, func(tx *redis.Tx) error {
		story, loadErr = c.next.GetStory(ctx, id)
		loaded = true
		if loadErr != nil {
			return nil
		}
		raw, err := json.Marshal(story)
		if err != nil {
			return fmt.Errorf("marshal story %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, storyKey(id), raw, c.ttl)
			return nil
		})
		return err
	}, generationKey(id))

	switch {
	case watchErr == nil:
	case errors.Is(watchErr, redis.TxFailedErr):
		c.logger.Debug("Story changed during read, not caching", zap.String("storyID", id))
	default:
		c.logger.Warn("Failed to cache story", zap.String("storyID", id), zap.Error(watchErr))
	}

	if !loaded {
		// WATCH не удался до чтения.
		return c.next.GetStory(ctx, id)
	}
	if loadErr != nil {
		return nil, loadErr
	}
	return story, nil
}

func (c *cachedStoryRepository) Create(ctx context.Context, story *models.Story) error {
	return c.next.Create(ctx, story)
}

func (c *cachedStoryRepository) PutStoryBranches(ctx context.Context, id string, branches []models.Branch) (*models.Story, error) {
	story, err := c.next.PutStoryBranches(ctx, id, branches)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, id)
	return story, nil
}

func (c *cachedStoryRepository) AppendBranch(ctx context.Context, id string, branch models.Branch) (*models.Branch, error) {
	added, err := c.next.AppendBranch(ctx, id, branch)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, id)
	return added, nil
}

func (c *cachedStoryRepository) DeleteBranch(ctx context.Context, id, branchID string) error {
	if err := c.next.DeleteBranch(ctx, id, branchID); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *cachedStoryRepository) UpdateMetadata(ctx context.Context, id, title, description string) (*models.Story, error) {
	return c.afterWrite(ctx, id)(c.next.UpdateMetadata(ctx, id, title, description))
}

func (c *cachedStoryRepository) UpdateStatus(ctx context.Context, id string, status models.StoryStatus) (*models.Story, error) {
	return c.afterWrite(ctx, id)(c.next.UpdateStatus(ctx, id, status))
}

func (c *cachedStoryRepository) UpdateCoverImage(ctx context.Context, id, coverImageURL string) (*models.Story, error) {
	return c.afterWrite(ctx, id)(c.next.UpdateCoverImage(ctx, id, coverImageURL))
}

func (c *cachedStoryRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]models.StorySummary, error) {
	return c.next.ListByAuthor(ctx, authorID, limit, offset)
}

func (c *cachedStoryRepository) ListByStatus(ctx context.Context, status models.StoryStatus, limit, offset int) ([]models.StorySummary, error) {
	return c.next.ListByStatus(ctx, status, limit, offset)
}

func (c *cachedStoryRepository) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *cachedStoryRepository) afterWrite(ctx context.Context, id string) func(*models.Story, error) (*models.Story, error) {
	return func(story *models.Story, err error) (*models.Story, error) {
		if err != nil {
			return nil, err
		}
		c.invalidate(ctx, id)
		return story, nil
	}
}

func (c *cachedStoryRepository) invalidate(ctx context.Context, id string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, storyKey(id))
		pipe.Incr(ctx, generationKey(id))
		// Счетчик живет дольше любой записи кэша и любого чтения.
		pipe.Expire(ctx, generationKey(id), c.generationTTL())
		return nil
	})
	if err != nil {
		c.logger.Warn("Failed to invalidate story cache", zap.String("storyID", id), zap.Error(err))
	}
}

func (c *cachedStoryRepository) generationTTL() time.Duration {
	if c.ttl <= 0 {
		return time.Hour
	}
	return 2*c.ttl + time.Minute
}

// Ping проверяет доступность Redis, используется в /health.
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis недоступен: %w", err)
	}
	return nil
}
