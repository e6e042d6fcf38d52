package main

import (
	"context"
	"testing"
	"time"

	"strangerlink/backend/internal/models"
	"strangerlink/backend/internal/storage"

	"github.com/stretchr/testify/assert"
)

type fakeReader struct {
	stats   []models.RoomStat
	summary *storage.Summary
	err     error
}

func (f fakeReader) RecentRoomStats(_ context.Context, limit int) ([]models.RoomStat, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.stats) > limit {
		return f.stats[:limit], nil
	}
	return f.stats, nil
}

func (f fakeReader) Summary(context.Context) (*storage.Summary, error) {
	return f.summary, f.err
}

func TestPrintRooms(t *testing.T) {
	r := fakeReader{stats: []models.RoomStat{{
		RoomID:          "room_1",
		StartedAt:       time.Now(),
		DurationSeconds: 65,
		Relayed:         3,
		EndReason:       models.EndReasonLeave,
	}}}
	assert.NoError(t, printRooms(context.Background(), r, 10))
}

func TestPrintSummary(t *testing.T) {
	r := fakeReader{summary: &storage.Summary{
		Rooms:       2,
		AvgDuration: 30,
		AvgRelayed:  1.5,
		ByReason:    map[string]int64{"leave": 1, "disconnect": 1},
	}}
	assert.NoError(t, printSummary(context.Background(), r))
}

func TestPrintErrorsPropagate(t *testing.T) {
	r := fakeReader{err: storage.ErrNoDatabase}
	assert.ErrorIs(t, printRooms(context.Background(), r, 1), storage.ErrNoDatabase)
	assert.ErrorIs(t, printSummary(context.Background(), r), storage.ErrNoDatabase)
}
