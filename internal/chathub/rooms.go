package chathub

import (
	"log/slog"

	"strangerlink/backend/internal/metrics"
	"strangerlink/backend/internal/models"
)

// createRoom pairs waitingID (already removed from the queue) with callerID.
// The room is Active and both sessions point at it before any notification is queued.
func (s *hubState) createRoom(waitingID, callerID string) (string, error) {
	if waitingID == callerID {
		return "", ErrInvalidState
	}
	a, err := s.registry.get(waitingID)
	if err != nil {
		return "", err
	}
	b, err := s.registry.get(callerID)
	if err != nil {
		return "", err
	}
	if a.session.RoomID != "" || b.session.RoomID != "" {
		return "", ErrInvalidState
	}

	room := &models.ChatRoom{
		RoomID:    "room_" + s.newID(),
		Members:   [2]string{waitingID, callerID},
		State:     models.RoomCreating,
		StartedAt: s.now(),
	}
	s.rooms[room.RoomID] = room
	for _, e := range []*entry{a, b} {
		e.session.State = models.StatePaired
		e.session.RoomID = room.RoomID
	}
	room.State = models.RoomActive

	// The session that completed the pairing starts negotiation.
	s.notify(waitingID, models.MatchFoundEvent(room.RoomID, b.session.Profile, false))
	s.notify(callerID, models.MatchFoundEvent(room.RoomID, a.session.Profile, true))

	s.metrics.Inc(metrics.MatchesMade)
	slog.Debug("match found", "room", room.RoomID, "waiting", waitingID, "caller", callerID)
	return room.RoomID, nil
}

// leave tears down the session's room. A Waiting session is cancelled instead;
// an Idle one (including after a teardown that already happened) is a no-op.
func (s *hubState) leave(id, reason string) error {
	e, err := s.registry.get(id)
	if err != nil {
		return err
	}

	switch e.session.State {
	case models.StateWaiting:
		return s.cancel(id)
	case models.StateIdle:
		return ErrInvalidState
	}

	room, ok := s.rooms[e.session.RoomID]
	if !ok {
		slog.Warn("session pointed at missing room", "session", id, "room", e.session.RoomID)
		e.session.State = models.StateIdle
		e.session.RoomID = ""
		return nil
	}
	s.destroyRoom(room, reason, id)
	return nil
}

// destroyRoom deletes the room and resets every member still pointing at it.
// All members except initiator receive partner-left.
func (s *hubState) destroyRoom(room *models.ChatRoom, reason, initiator string) {
	room.State = models.RoomDestroyed
	delete(s.rooms, room.RoomID)

	for _, memberID := range room.Members {
		member, err := s.registry.get(memberID)
		if err != nil || member.session.RoomID != room.RoomID {
			continue
		}
		member.session.State = models.StateIdle
		member.session.RoomID = ""
		if memberID != initiator {
			s.notify(memberID, models.PartnerLeftEvent())
		}
	}

	stat := models.NewRoomStat(room, s.now(), reason)
	s.effects = append(s.effects, sideEffect{stat: &stat})
	s.metrics.Inc(metrics.RoomsClosed)
	slog.Debug("room closed", "room", room.RoomID, "reason", reason)
}

func (s *hubState) roomOf(id string) (string, bool) {
	e, err := s.registry.get(id)
	if err != nil || e.session.RoomID == "" {
		return "", false
	}
	return e.session.RoomID, true
}
