package chathub

import (
	"strangerlink/backend/internal/metrics"
	"strangerlink/backend/internal/models"
)

// relay forwards a negotiation or chat event to the other member of roomID.
//
// Membership is checked against the room table, never against what the sender
// claims. An empty roomID means "the room the sender is in now".
func (s *hubState) relay(from, roomID string, ev models.Event) error {
	if !ev.Type.IsRelayed() {
		return ErrInvalidState
	}
	sender, err := s.registry.get(from)
	if err != nil {
		return err
	}
	if roomID == "" {
		roomID = sender.session.RoomID
		if roomID == "" {
			return ErrInvalidState
		}
	}

	room, ok := s.rooms[roomID]
	if !ok || room.State != models.RoomActive {
		s.metrics.Inc(metrics.RelayStaleRoom)
		return ErrNotFound
	}
	if !room.Has(from) || sender.session.RoomID != roomID {
		s.metrics.Inc(metrics.RelayUnauthorized)
		return ErrUnauthorized
	}
	to, _ := room.Other(from)

	out := models.Event{
		Type:   ev.Type,
		RoomID: roomID,
		From:   from,
	}
	if ev.Type.IsNegotiation() {
		out.Payload = ev.Payload
	} else {
		ts := s.now().UTC()
		out.Message = ev.Message
		out.Timestamp = &ts
	}

	room.Relayed++
	s.metrics.Inc(metrics.Relayed)
	s.notify(to, out)
	return nil
}
