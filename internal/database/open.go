package database

import (
	"context"
	"fmt"

	"story-branches/internal/interfaces"

	"go.uber.org/zap"
)

// Драйверы хранилища историй.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StoreConfig выбирает и настраивает хранилище историй.
type StoreConfig struct {
	Driver     string
	SQLitePath string
	Postgres   PoolConfig
	// Migrate применяет встроенные миграции postgres перед открытием пула.
	Migrate bool
}

// OpenStoryRepository открывает хранилище по cfg.Driver. Возвращаемая функция закрывает соединения.
func OpenStoryRepository(ctx context.Context, cfg StoreConfig, logger *zap.Logger) (interfaces.StoryRepository, func(), error) {
	switch cfg.Driver {
	case DriverSQLite:
		db, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using SQLite story store", zap.String("path", cfg.SQLitePath))
		return NewSQLiteStoryRepository(db, logger), func() { _ = db.Close() }, nil
	case DriverPostgres:
		if cfg.Migrate {
			if err := ApplyMigrations(cfg.Postgres.DSN, logger); err != nil {
				return nil, nil, err
			}
		}
		pool, err := NewPool(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		return NewPgStoryRepository(pool, logger), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
