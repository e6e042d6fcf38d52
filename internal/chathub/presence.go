package chathub

import "strangerlink/backend/internal/models"

// broadcastPresence queues online-count for every registered session.
func (s *hubState) broadcastPresence() int {
	n := s.registry.count()
	for id := range s.registry.sessions {
		s.notify(id, models.OnlineCountEvent(n))
	}
	s.effects = append(s.effects, sideEffect{presence: &n})
	return n
}
