package chathub

import (
	"time"

	"strangerlink/backend/internal/models"
)

type entry struct {
	session models.Session
	client  Client
}

// registry is the Session Registry: every connected participant keyed by session id.
// It is only touched from the hub loop.
type registry struct {
	sessions map[string]*entry
}

func newRegistry() registry {
	return registry{sessions: make(map[string]*entry)}
}

func (r *registry) register(id string, profile models.Profile, client Client, now time.Time) error {
	if _, ok := r.sessions[id]; ok {
		return ErrDuplicateSession
	}
	r.sessions[id] = &entry{
		session: models.Session{
			ID:       id,
			Profile:  profile.Clone(),
			State:    models.StateIdle,
			JoinedAt: now,
		},
		client: client,
	}
	return nil
}

func (r *registry) get(id string) (*entry, error) {
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (r *registry) remove(id string) {
	delete(r.sessions, id)
}

func (r *registry) count() int {
	return len(r.sessions)
}
