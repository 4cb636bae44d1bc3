package storage

import (
	"context"
	"io"

	"story-branches/internal/interfaces"
	"story-branches/internal/models"

	"go.uber.org/zap"
)

type disabledImageStore struct {
	logger *zap.Logger
}

// NewDisabledImageStore returns an ImageStore that rejects every upload with models.ErrImageStorageDisabled.
func NewDisabledImageStore(logger *zap.Logger) interfaces.ImageStore {
	return &disabledImageStore{logger: logger.Named("DisabledImageStore")}
}

func (s *disabledImageStore) Upload(_ context.Context, objectName, _ string, _ io.Reader) (string, error) {
	s.logger.Debug("Upload rejected, image storage disabled", zap.String("object", objectName))
	return "", models.ErrImageStorageDisabled
}
