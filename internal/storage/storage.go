package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"strangerlink/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage covers the side stores the hub reports to. None of them is a source
// of truth for matchmaking: calls happen after the in-memory transition is done.
type Storage interface {
	SaveRoomStat(ctx context.Context, stat *models.RoomStat) error
	PublishPresence(ctx context.Context, count int) error
}

// StatsReader is used by the admin CLI.
type StatsReader interface {
	RecentRoomStats(ctx context.Context, limit int) ([]models.RoomStat, error)
	Summary(ctx context.Context) (*Summary, error)
}

// Summary aggregates room_stats.
type Summary struct {
	Rooms       int64
	AvgDuration float64
	AvgRelayed  float64
	ByReason    map[string]int64
}

// ErrNoDatabase is returned by read methods when Postgres is not configured.
var ErrNoDatabase = errors.New("storage: database not configured")

// Service writes to Postgres (gorm) and Redis. Either handle may be nil;
// the matching writes are then skipped.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Migrate creates the diagnostics table.
func (s *Service) Migrate() error {
	if s.DB == nil {
		return nil
	}
	if err := s.DB.AutoMigrate(&models.RoomStat{}); err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	return nil
}

// SaveRoomStat зберігає діагностику закритої кімнати в PostgreSQL
func (s *Service) SaveRoomStat(ctx context.Context, stat *models.RoomStat) error {
	if s.DB == nil {
		return nil
	}
	if err := s.DB.WithContext(ctx).Create(stat).Error; err != nil {
		slog.Error("failed to save room stat", "room", stat.RoomID, "error", err)
		return err
	}
	return nil
}

// RecentRoomStats returns the newest rows first.
func (s *Service) RecentRoomStats(ctx context.Context, limit int) ([]models.RoomStat, error) {
	if s.DB == nil {
		return nil, ErrNoDatabase
	}
	var stats []models.RoomStat
	err := s.DB.WithContext(ctx).
		Order("started_at desc").
		Limit(limit).
		Find(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("storage: recent room stats: %w", err)
	}
	return stats, nil
}

// Summary aggregates all rows of room_stats.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	if s.DB == nil {
		return nil, ErrNoDatabase
	}

	var totals struct {
		Rooms       int64
		AvgDuration float64
		AvgRelayed  float64
	}
	err := s.DB.WithContext(ctx).Model(&models.RoomStat{}).
		Select("COUNT(*) AS rooms, COALESCE(AVG(duration_seconds), 0) AS avg_duration, COALESCE(AVG(relayed), 0) AS avg_relayed").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("storage: summary: %w", err)
	}

	var rows []struct {
		EndReason string
		N         int64
	}
	err = s.DB.WithContext(ctx).Model(&models.RoomStat{}).
		Select("end_reason, COUNT(*) AS n").
		Group("end_reason").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("storage: summary by reason: %w", err)
	}

	out := &Summary{
		Rooms:       totals.Rooms,
		AvgDuration: totals.AvgDuration,
		AvgRelayed:  totals.AvgRelayed,
		ByReason:    make(map[string]int64, len(rows)),
	}
	for _, r := range rows {
		out.ByReason[r.EndReason] = r.N
	}
	return out, nil
}

// Close releases the database pool and the redis client.
func (s *Service) Close() error {
	var errs []error
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		} else {
			errs = append(errs, err)
		}
	}
	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}
	return errors.Join(errs...)
}
