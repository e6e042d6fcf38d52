package models

import "time"

// SessionState is the transient matchmaking state of one connected participant.
type SessionState int

const (
	StateIdle SessionState = iota
	StateWaiting
	StatePaired
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StatePaired:
		return "paired"
	default:
		return "unknown"
	}
}

// Session represents one connected participant.
// RoomID is set iff State == StatePaired.
type Session struct {
	ID       string       `json:"id"`
	Profile  Profile      `json:"profile"`
	State    SessionState `json:"state"`
	RoomID   string       `json:"roomId,omitempty"`
	JoinedAt time.Time    `json:"joinedAt"`
}
