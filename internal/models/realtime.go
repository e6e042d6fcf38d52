package models

import (
	"encoding/json"
	"time"
)

// EventType names one message kind on the participant boundary.
type EventType string

// Inbound events.
const (
	EventJoin      EventType = "join"
	EventFindMatch EventType = "find-match"
	EventCancel    EventType = "cancel-match"
	EventLeaveRoom EventType = "leave-room"
	EventOffer     EventType = "webrtc-offer"
	EventAnswer    EventType = "webrtc-answer"
	EventCandidate EventType = "webrtc-ice-candidate"
	EventChat      EventType = "chat-message"
)

// Outbound events. Relayed negotiation and chat events reuse the inbound names.
const (
	EventJoined      EventType = "joined"
	EventWaiting     EventType = "waiting-for-match"
	EventMatchFound  EventType = "match-found"
	EventPartnerLeft EventType = "partner-left"
	EventOnlineCount EventType = "online-count"
	EventError       EventType = "error"
)

// IsRelayed reports whether t is forwarded verbatim to the room partner.
func (t EventType) IsRelayed() bool {
	switch t {
	case EventOffer, EventAnswer, EventCandidate, EventChat:
		return true
	}
	return false
}

// IsNegotiation reports whether t carries an opaque session-setup payload.
func (t EventType) IsNegotiation() bool {
	return t == EventOffer || t == EventAnswer || t == EventCandidate
}

// Event is the single envelope used in both directions.
// Payload is never decoded by the server; it is forwarded byte for byte.
type Event struct {
	Type      EventType       `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Message   string          `json:"message,omitempty"`
	From      string          `json:"from,omitempty"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`

	// join
	Profile *Profile `json:"profile,omitempty"`
	UserID  string   `json:"userId,omitempty"`

	// match-found
	Partner  *Profile `json:"partner,omitempty"`
	IsCaller *bool    `json:"isCaller,omitempty"`

	// online-count
	Count *int `json:"count,omitempty"`

	Error string `json:"error,omitempty"`
}

func JoinedEvent(userID string) Event {
	return Event{Type: EventJoined, UserID: userID}
}

func WaitingEvent() Event {
	return Event{Type: EventWaiting}
}

func MatchFoundEvent(roomID string, partner Profile, isCaller bool) Event {
	p := partner.Clone()
	return Event{Type: EventMatchFound, RoomID: roomID, Partner: &p, IsCaller: &isCaller}
}

func PartnerLeftEvent() Event {
	return Event{Type: EventPartnerLeft}
}

func OnlineCountEvent(n int) Event {
	return Event{Type: EventOnlineCount, Count: &n}
}

func ErrorEvent(msg string) Event {
	return Event{Type: EventError, Error: msg}
}
