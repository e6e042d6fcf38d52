package storage

import (
	"context"
	"strconv"
	"time"
)

const (
	// PresenceKey holds the last broadcast online count.
	PresenceKey = "presence:online"
	// PresenceChannel receives every broadcast count (Pub/Sub).
	PresenceChannel = "presence"

	presenceTTL = time.Minute
)

// PublishPresence дзеркалить лічильник онлайну в Redis (ключ + Pub/Sub)
func (s *Service) PublishPresence(ctx context.Context, count int) error {
	if s.Redis == nil {
		return nil
	}
	value := strconv.Itoa(count)

	pipe := s.Redis.TxPipeline()
	pipe.Set(ctx, PresenceKey, value, presenceTTL)
	pipe.Publish(ctx, PresenceChannel, value)
	_, err := pipe.Exec(ctx)
	return err
}
