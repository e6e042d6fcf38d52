package chathub

import (
	"sort"
	"time"

	"strangerlink/backend/internal/metrics"
	"strangerlink/backend/internal/models"
)

type delivery struct {
	to    string
	event models.Event
}

// sideEffect is work for the storage worker. Exactly one field is set.
type sideEffect struct {
	stat     *models.RoomStat
	presence *int
}

// hubState holds the Session Registry, the Pairing Queue and the room table as
// one value. Only the hub loop goroutine touches it, so every method below is a
// single atomic step with respect to every other.
//
// Methods never talk to clients directly: they append to outbox/effects, and
// the loop delivers those once the step is complete.
type hubState struct {
	registry registry
	queue    pairingQueue
	rooms    map[string]*models.ChatRoom

	now     func() time.Time
	newID   func() string
	metrics *metrics.Metrics

	outbox  []delivery
	effects []sideEffect
}

func newHubState(now func() time.Time, newID func() string, m *metrics.Metrics) *hubState {
	return &hubState{
		registry: newRegistry(),
		rooms:    make(map[string]*models.ChatRoom),
		now:      now,
		newID:    newID,
		metrics:  m,
	}
}

func (s *hubState) notify(to string, ev models.Event) {
	s.outbox = append(s.outbox, delivery{to: to, event: ev})
}

// join registers the client and acks with its session id.
func (s *hubState) join(client Client, profile models.Profile) (string, error) {
	id := client.SessionID()
	if id == "" {
		id = s.newID()
	}
	if err := s.registry.register(id, profile, client, s.now()); err != nil {
		s.metrics.Inc(metrics.SessionsRejected)
		return "", err
	}
	s.metrics.Inc(metrics.SessionsJoined)
	s.notify(id, models.JoinedEvent(id))
	return id, nil
}

// disconnect unwinds whatever state the session is in, then removes it.
// The returned client must be closed by the caller after the outbox is flushed.
func (s *hubState) disconnect(id string) (Client, error) {
	e, err := s.registry.get(id)
	if err != nil {
		return nil, err
	}

	switch e.session.State {
	case models.StateWaiting:
		_ = s.cancel(id)
	case models.StatePaired:
		_ = s.leave(id, models.EndReasonDisconnect)
	}

	s.registry.remove(id)
	s.metrics.Inc(metrics.SessionsLeft)
	return e.client, nil
}

// closeAllRooms tears every room down; used on hub shutdown.
func (s *hubState) closeAllRooms() {
	for _, room := range s.rooms {
		s.destroyRoom(room, models.EndReasonShutdown, "")
	}
}

// dropAll empties the registry and queue and returns the clients to close.
func (s *hubState) dropAll() []Client {
	clients := make([]Client, 0, s.registry.count())
	for _, e := range s.registry.sessions {
		clients = append(clients, e.client)
	}
	s.registry = newRegistry()
	s.queue = pairingQueue{}
	return clients
}

// Snapshot is a consistent copy of the hub state at one point in time.
type Snapshot struct {
	Sessions []models.Session
	Queue    []string
	Rooms    []models.ChatRoom
}

func (s *hubState) snapshot() Snapshot {
	snap := Snapshot{
		Sessions: make([]models.Session, 0, s.registry.count()),
		Queue:    s.queue.ids(),
		Rooms:    make([]models.ChatRoom, 0, len(s.rooms)),
	}
	for _, e := range s.registry.sessions {
		sess := e.session
		sess.Profile = sess.Profile.Clone()
		snap.Sessions = append(snap.Sessions, sess)
	}
	for _, r := range s.rooms {
		snap.Rooms = append(snap.Rooms, *r)
	}
	sort.Slice(snap.Sessions, func(i, j int) bool {
		if snap.Sessions[i].JoinedAt.Equal(snap.Sessions[j].JoinedAt) {
			return snap.Sessions[i].ID < snap.Sessions[j].ID
		}
		return snap.Sessions[i].JoinedAt.Before(snap.Sessions[j].JoinedAt)
	})
	sort.Slice(snap.Rooms, func(i, j int) bool {
		return snap.Rooms[i].RoomID < snap.Rooms[j].RoomID
	})
	return snap
}

// Waiting returns the number of queued sessions.
func (s Snapshot) Waiting() int { return len(s.Queue) }

// ActiveRooms returns the number of live rooms.
func (s Snapshot) ActiveRooms() int { return len(s.Rooms) }
