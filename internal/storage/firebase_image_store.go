package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"story-branches/internal/interfaces"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const publicURLBase = "https://storage.googleapis.com"

var _ interfaces.ImageStore = (*firebaseImageStore)(nil)

// Config описывает подключение к Firebase Storage.
type Config struct {
	CredentialsPath string
	Bucket          string
}

type firebaseImageStore struct {
	app    *firebase.App
	bucket string
	logger *zap.Logger
}

// NewFirebaseImageStore инициализирует Firebase App из файла сервис-аккаунта.
// Возвращает nil, nil если хранилище не настроено.
func NewFirebaseImageStore(ctx context.Context, cfg Config, logger *zap.Logger) (interfaces.ImageStore, error) {
	if cfg.CredentialsPath == "" || cfg.Bucket == "" {
		logger.Warn("Firebase Storage не настроен (FIREBASE_CREDENTIALS_PATH / FIREBASE_STORAGE_BUCKET), загрузка изображений отключена")
		return nil, nil
	}

	opts := option.WithCredentialsFile(cfg.CredentialsPath)
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: cfg.Bucket}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Firebase App из файла '%s': %w", cfg.CredentialsPath, err)
	}

	logger.Info("Firebase image store initialized", zap.String("bucket", cfg.Bucket))
	return &firebaseImageStore{
		app:    app,
		bucket: cfg.Bucket,
		logger: logger.Named("FirebaseImageStore"),
	}, nil
}

// Upload streams r into the bucket under objectName and returns its public URL.
func (s *firebaseImageStore) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	client, err := s.app.Storage(ctx)
	if err != nil {
		return "", fmt.Errorf("ошибка получения Storage client: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return "", fmt.Errorf("ошибка получения bucket %s: %w", s.bucket, err)
	}

	w := bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		s.logger.Error("Image upload failed", zap.String("object", objectName), zap.Error(err))
		return "", fmt.Errorf("ошибка загрузки %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		s.logger.Error("Image upload finalize failed", zap.String("object", objectName), zap.Error(err))
		return "", fmt.Errorf("ошибка завершения загрузки %s: %w", objectName, err)
	}

	s.logger.Info("Image uploaded", zap.String("object", objectName), zap.Int64("bytes", n))
	return PublicURL(s.bucket, objectName), nil
}

// PublicURL строит адрес объекта в GCS. Сегменты пути экранируются по отдельности.
func PublicURL(bucket, objectName string) string {
	parts := strings.Split(objectName, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return fmt.Sprintf("%s/%s/%s", publicURLBase, bucket, strings.Join(parts, "/"))
}

// ObjectName returns the storage path for a story image.
func ObjectName(storyID, kind, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("stories/%s/%s%s", storyID, kind, ext)
}
