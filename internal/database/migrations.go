package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ApplyMigrations применяет встроенные миграции к базе данных по DSN.
func ApplyMigrations(dsn string, logger *zap.Logger) error {
	m, sqlDB, err := newMigrate(dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Migrations already up to date")
			return nil
		}
		version, dirty, vErr := m.Version()
		if vErr == nil {
			logger.Error("Migration failed", zap.Uint("version", version), zap.Bool("dirty", dirty), zap.Error(err))
		}
		return fmt.Errorf("не удалось применить миграции: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("Migrations applied", zap.Uint("version", version))
	return nil
}

// RollbackMigrations откатывает последние steps миграций.
func RollbackMigrations(dsn string, steps int, logger *zap.Logger) error {
	m, sqlDB, err := newMigrate(dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("не удалось откатить миграции: %w", err)
	}
	logger.Info("Migrations rolled back", zap.Int("steps", steps))
	return nil
}

func newMigrate(dsn string) (*migrate.Migrate, *sql.DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось создать подключение к БД: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("не удалось создать драйвер миграций: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("не удалось создать источник миграций: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("не удалось создать экземпляр migrate: %w", err)
	}
	return m, sqlDB, nil
}
