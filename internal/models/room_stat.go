package models

import "time"

// Room end reasons.
const (
	EndReasonLeave      = "leave"
	EndReasonDisconnect = "disconnect"
	EndReasonShutdown   = "shutdown"
)

// RoomStat is the diagnostics record written when a room is torn down.
// It deliberately carries no session ids, profiles or message content.
type RoomStat struct {
	// RoomID is the identifier the room had while it was active.
	RoomID string `gorm:"primaryKey" json:"roomId"`
	// StartedAt is when both members were paired.
	StartedAt time.Time `gorm:"not null;index" json:"startedAt"`
	// EndedAt is when the room was torn down.
	EndedAt time.Time `gorm:"not null" json:"endedAt"`
	// DurationSeconds is EndedAt - StartedAt, rounded down.
	DurationSeconds int64 `json:"durationSeconds"`
	// Relayed is the number of payloads forwarded inside the room.
	Relayed int `json:"relayed"`
	// EndReason is one of the EndReason constants.
	EndReason string `gorm:"type:text;not null" json:"endReason"`
}

// NewRoomStat builds the diagnostics record for a room ending at endedAt.
func NewRoomStat(room *ChatRoom, endedAt time.Time, reason string) RoomStat {
	return RoomStat{
		RoomID:          room.RoomID,
		StartedAt:       room.StartedAt,
		EndedAt:         endedAt,
		DurationSeconds: int64(endedAt.Sub(room.StartedAt) / time.Second),
		Relayed:         room.Relayed,
		EndReason:       reason,
	}
}
