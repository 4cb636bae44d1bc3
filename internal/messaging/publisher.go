package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	publishTimeout  = 10 * time.Second
	publishAttempts = 3
	appID           = "story-branches"
)

var _ interfaces.StoryEventPublisher = (*rabbitMQStoryEventPublisher)(nil)

// rabbitMQStoryEventPublisher публикует события изменения историй в durable-очередь.
type rabbitMQStoryEventPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQStoryEventPublisher opens a channel on conn and declares the events queue.
func NewRabbitMQStoryEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (*rabbitMQStoryEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("story event publisher: не удалось открыть канал: %w", err)
	}
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("story event publisher: не удалось объявить очередь '%s': %w", queueName, err)
	}
	log := logger.Named("StoryEventPublisher")
	log.Info("Story events queue declared", zap.String("queue", queueName))
	return &rabbitMQStoryEventPublisher{channel: ch, queueName: queueName, logger: log}, nil
}

// PublishStoryEvent serializes the event as JSON and publishes it with retries.
func (p *rabbitMQStoryEventPublisher) PublishStoryEvent(ctx context.Context, event models.StoryEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("ошибка подготовки события %s: %w", event.Type, err)
	}
	return p.publishMessage(ctx, string(event.Type), body)
}

// Close закрывает канал. Соединением управляет вызывающий код.
func (p *rabbitMQStoryEventPublisher) Close() error {
	if p.channel == nil {
		return nil
	}
	return p.channel.Close()
}

func (p *rabbitMQStoryEventPublisher) publishMessage(ctx context.Context, eventType string, body []byte) error {
	if p.channel == nil {
		return errors.New("канал RabbitMQ не инициализирован")
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			"",          // exchange (default)
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Type:         eventType,
				Body:         body,
				Timestamp:    time.Now(),
				AppId:        appID,
			},
		)
		if err == nil {
			p.logger.Debug("Story event published",
				zap.String("queue", p.queueName), zap.String("type", eventType), zap.Int("attempt", attempt))
			return nil
		}
		p.logger.Warn("Story event publish failed",
			zap.String("queue", p.queueName), zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("ошибка публикации в очередь %s: %w", p.queueName, ctx.Err())
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return fmt.Errorf("ошибка публикации в очередь %s после retries: %w", p.queueName, err)
}

// Dial подключается к RabbitMQ, повторяя попытки с фиксированной паузой.
func Dial(ctx context.Context, url string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*amqp.Connection, error) {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			logger.Info("Connected to RabbitMQ", zap.Int("attempt", attempt))
			return conn, nil
		}
		lastErr = err
		logger.Warn("RabbitMQ connection failed, retrying...",
			zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries), zap.Error(err))
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to rabbitmq after %d attempts: %w", maxRetries, lastErr)
}
