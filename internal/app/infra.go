package app

import (
	"context"
	"fmt"
	"log/slog"

	"strangerlink/backend/internal/config"
	"strangerlink/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupStorage connects whichever side stores are configured. Neither is required.
func setupStorage(ctx context.Context, cfg *config.Config) (*storage.Service, error) {
	var (
		db  *gorm.DB
		rdb *redis.Client
	)

	if cfg.DatabaseDSN != "" {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect PostgreSQL: %w", err)
		}
		slog.Info("database ready")
	} else {
		slog.Info("DATABASE_DSN not set, room diagnostics are not persisted")
	}

	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect Redis: %w", err)
		}
		slog.Info("redis ready", "addr", cfg.RedisAddr)
	}

	s := storage.NewStorageService(db, rdb)
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
