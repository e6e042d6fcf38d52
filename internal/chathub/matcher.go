package chathub

import (
	"log/slog"

	"strangerlink/backend/internal/metrics"
	"strangerlink/backend/internal/models"
)

// pairingQueue - черга користувачів, які чекають на з'єднання (FIFO).
// A session id appears at most once, and only while that session is Waiting.
type pairingQueue struct {
	waiting []string
}

func (q *pairingQueue) push(id string) {
	q.waiting = append(q.waiting, id)
}

// firstOther returns the index of the oldest waiting session that is not id.
func (q *pairingQueue) firstOther(id string) (int, bool) {
	for i, candidate := range q.waiting {
		// Не шукати пару із самим собою
		if candidate == id {
			continue
		}
		return i, true
	}
	return -1, false
}

func (q *pairingQueue) removeAt(i int) string {
	id := q.waiting[i]
	q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
	return id
}

func (q *pairingQueue) remove(id string) bool {
	for i, candidate := range q.waiting {
		if candidate == id {
			q.removeAt(i)
			return true
		}
	}
	return false
}

func (q *pairingQueue) contains(id string) bool {
	for _, candidate := range q.waiting {
		if candidate == id {
			return true
		}
	}
	return false
}

func (q *pairingQueue) ids() []string {
	return append([]string(nil), q.waiting...)
}

func (q *pairingQueue) len() int {
	return len(q.waiting)
}

// requestMatch pairs an Idle session with the first other waiting session, or
// parks it at the tail of the queue. Selecting the candidate, removing it from
// the queue and creating the room all happen in this one step.
func (s *hubState) requestMatch(id string) error {
	e, err := s.registry.get(id)
	if err != nil {
		return err
	}
	if e.session.State != models.StateIdle {
		return ErrInvalidState
	}

	for {
		i, ok := s.queue.firstOther(id)
		if !ok {
			break
		}
		candidateID := s.queue.removeAt(i)
		candidate, err := s.registry.get(candidateID)
		if err != nil || candidate.session.State != models.StateWaiting {
			slog.Warn("dropping stale queue entry", "session", candidateID)
			continue
		}
		_, err = s.createRoom(candidateID, id)
		return err
	}

	s.queue.push(id)
	e.session.State = models.StateWaiting
	s.metrics.Inc(metrics.QueueEntered)
	slog.Debug("session queued", "session", id, "queue_len", s.queue.len())
	s.notify(id, models.WaitingEvent())
	return nil
}

// cancel returns a Waiting session to Idle.
func (s *hubState) cancel(id string) error {
	e, err := s.registry.get(id)
	if err != nil {
		return err
	}
	if e.session.State != models.StateWaiting {
		return ErrInvalidState
	}
	s.queue.remove(id)
	e.session.State = models.StateIdle
	s.metrics.Inc(metrics.QueueCancelled)
	return nil
}
