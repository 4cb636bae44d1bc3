package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PoolConfig содержит параметры пула соединений PostgreSQL.
type PoolConfig struct {
	DSN         string
	MaxConns    int
	IdleTimeout time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

// NewPool создает пул соединений и ждет, пока БД ответит на ping.
func NewPool(ctx context.Context, cfg PoolConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		connectCancel()
		if err != nil {
			lastErr = err
			logger.Warn("Postgres connection pool creation failed, retrying...",
				zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries), zap.Error(err))
		} else {
			pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
			err = pool.Ping(pingCtx)
			pingCancel()
			if err == nil {
				logger.Info("Successfully connected and pinged PostgreSQL", zap.Int("attempt", attempt))
				return pool, nil
			}
			pool.Close()
			lastErr = err
			logger.Warn("Postgres ping failed, retrying...",
				zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries), zap.Error(err))
		}

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RetryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", maxRetries, lastErr)
}
