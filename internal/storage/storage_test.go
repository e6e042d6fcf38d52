package storage_test

import (
	"context"
	"testing"
	"time"

	"strangerlink/backend/internal/models"
	"strangerlink/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestService_WithoutBackendsIsNoop checks that an unconfigured Service never fails writes,
// so the hub can run with no Postgres and no Redis.
func TestService_WithoutBackendsIsNoop(t *testing.T) {
	s := storage.NewStorageService(nil, nil)
	ctx := context.Background()

	require.NoError(t, s.Migrate())
	assert.NoError(t, s.SaveRoomStat(ctx, &models.RoomStat{RoomID: "room_1", StartedAt: time.Now(), EndedAt: time.Now()}))
	assert.NoError(t, s.PublishPresence(ctx, 3))
	assert.NoError(t, s.Close())
}

func TestService_ReadsNeedDatabase(t *testing.T) {
	s := storage.NewStorageService(nil, nil)

	_, err := s.RecentRoomStats(context.Background(), 10)
	assert.ErrorIs(t, err, storage.ErrNoDatabase)

	_, err = s.Summary(context.Background())
	assert.ErrorIs(t, err, storage.ErrNoDatabase)
}

func TestService_ImplementsInterfaces(t *testing.T) {
	var _ storage.Storage = (*storage.Service)(nil)
	var _ storage.StatsReader = (*storage.Service)(nil)
}
