package illustration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Максимальная длина промпта, которую принимает DALL-E 3.
const maxPromptRunes = 4000

var _ interfaces.IllustrationGenerator = (*openAIGenerator)(nil)

// Config содержит настройки генератора иллюстраций.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Size    string
	Timeout time.Duration
}

type openAIGenerator struct {
	client  *openai.Client
	model   string
	size    string
	timeout time.Duration
	logger  *zap.Logger
}

// NewOpenAIGenerator создает генератор иллюстраций.
// Возвращает nil, nil если ключ API не задан.
func NewOpenAIGenerator(cfg Config, logger *zap.Logger) (interfaces.IllustrationGenerator, error) {
	if cfg.APIKey == "" {
		logger.Warn("Ключ OpenAI не задан, генерация иллюстраций отключена")
		return nil, nil
	}
	if cfg.Model == "" {
		cfg.Model = openai.CreateImageModelDallE3
	}
	if cfg.Size == "" {
		cfg.Size = openai.CreateImageSize1024x1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &openAIGenerator{
		client:  openai.NewClientWithConfig(config),
		model:   cfg.Model,
		size:    cfg.Size,
		timeout: cfg.Timeout,
		logger:  logger.Named("OpenAIIllustrator"),
	}, nil
}

// Generate requests a single image for prompt and returns its URL.
func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = truncate(strings.TrimSpace(prompt), maxPromptRunes)
	if prompt == "" {
		return "", fmt.Errorf("%w: пустой промпт для иллюстрации", models.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          g.model,
		N:              1,
		Size:           g.size,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		g.logger.Error("Image generation failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", fmt.Errorf("ошибка генерации иллюстрации: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errors.New("генератор вернул пустой ответ")
	}

	g.logger.Info("Illustration generated", zap.Duration("elapsed", time.Since(start)))
	return resp.Data[0].URL, nil
}

// Prompt строит промпт иллюстрации из текста ветки и названия истории.
func Prompt(storyTitle string, branch models.Branch) string {
	var b strings.Builder
	b.WriteString("Book illustration, no text or lettering.")
	if t := strings.TrimSpace(storyTitle); t != "" {
		b.WriteString(" Story: ")
		b.WriteString(t)
		b.WriteString(".")
	}
	b.WriteString(" Scene: ")
	b.WriteString(strings.TrimSpace(branch.Text))
	return b.String()
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
