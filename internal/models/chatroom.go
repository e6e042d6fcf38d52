package models

import "time"

// RoomState tracks a room through Creating -> Active -> Destroyed.
type RoomState int

const (
	RoomCreating RoomState = iota
	RoomActive
	RoomDestroyed
)

func (s RoomState) String() string {
	switch s {
	case RoomCreating:
		return "creating"
	case RoomActive:
		return "active"
	case RoomDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// ChatRoom represents a 1-on-1 session between two participants.
// Members never changes after creation.
type ChatRoom struct {
	// RoomID is the unique identifier for the chat room.
	RoomID string
	// Members holds the two session ids. Members[0] is the one that was waiting.
	Members [2]string
	// State is the lifecycle state of the room.
	State RoomState
	// StartedAt is the timestamp when the chat room was created.
	StartedAt time.Time
	// Relayed counts payloads forwarded inside the room.
	Relayed int
}

// Has reports whether id is one of the room members.
func (r *ChatRoom) Has(id string) bool {
	return r.Members[0] == id || r.Members[1] == id
}

// Other returns the member that is not id.
func (r *ChatRoom) Other(id string) (string, bool) {
	switch id {
	case r.Members[0]:
		return r.Members[1], true
	case r.Members[1]:
		return r.Members[0], true
	}
	return "", false
}
