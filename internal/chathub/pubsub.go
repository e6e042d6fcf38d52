package chathub

import (
	"context"
	"log/slog"
	"time"
)

const storageTimeout = 5 * time.Second

// runSideEffects executes storage writes off the hub loop until effects is closed.
// Failures are logged and never reach the hub.
func (m *ManagerService) runSideEffects(effects <-chan sideEffect) {
	for eff := range effects {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		switch {
		case eff.stat != nil:
			if err := m.Storage.SaveRoomStat(ctx, eff.stat); err != nil {
				slog.Warn("failed to save room stat", "room", eff.stat.RoomID, "error", err)
			}
		case eff.presence != nil:
			if err := m.Storage.PublishPresence(ctx, *eff.presence); err != nil {
				slog.Warn("failed to publish presence", "count", *eff.presence, "error", err)
			}
		}
		cancel()
	}
}
