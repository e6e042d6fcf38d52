package chathub

import (
	"context"
	"log/slog"
	"time"

	"strangerlink/backend/internal/metrics"
	"strangerlink/backend/internal/models"
	"strangerlink/backend/internal/storage"

	"github.com/google/uuid"
)

const (
	defaultPresenceInterval = 5 * time.Second
	defaultSideEffectBuffer = 1024
)

type registration struct {
	client  Client
	profile models.Profile
	reply   chan registrationResult
}

type registrationResult struct {
	id  string
	err error
}

type request struct {
	sessionID string
	reply     chan error
}

type relayRequest struct {
	from   string
	roomID string
	event  models.Event
	reply  chan error
}

// ManagerService is the hub. A single goroutine (Run) owns the registry, the
// pairing queue and every room; the exported methods submit commands to it and
// wait for the reply.
type ManagerService struct {
	Storage storage.Storage
	Metrics *metrics.Metrics

	// Channels
	registerCh   chan registration
	unregisterCh chan request
	matchCh      chan request
	cancelCh     chan request
	leaveCh      chan request
	incomingCh   chan relayRequest
	queryCh      chan func(*hubState)

	effectsCh        chan sideEffect
	presenceInterval time.Duration
	state            *hubState
	done             chan struct{}
}

// Option configures a ManagerService.
type Option func(*ManagerService)

// WithPresenceInterval sets how often online-count is broadcast.
func WithPresenceInterval(d time.Duration) Option {
	return func(m *ManagerService) {
		if d > 0 {
			m.presenceInterval = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *ManagerService) { m.state.now = now }
}

// WithIDGenerator replaces the uuid generator used for session and room ids.
func WithIDGenerator(newID func() string) Option {
	return func(m *ManagerService) { m.state.newID = newID }
}

// WithMetrics attaches a counter set.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *ManagerService) {
		m.Metrics = mt
		m.state.metrics = mt
	}
}

// WithSideEffectBuffer sets how many storage writes may be pending before new ones are dropped.
func WithSideEffectBuffer(n int) Option {
	return func(m *ManagerService) {
		if n > 0 {
			m.effectsCh = make(chan sideEffect, n)
		}
	}
}

// NewManagerService створює хаб. A nil storage means nothing is persisted.
func NewManagerService(s storage.Storage, opts ...Option) *ManagerService {
	if s == nil {
		s = storage.NewStorageService(nil, nil)
	}
	m := &ManagerService{
		Storage:          s,
		registerCh:       make(chan registration),
		unregisterCh:     make(chan request),
		matchCh:          make(chan request),
		cancelCh:         make(chan request),
		leaveCh:          make(chan request),
		incomingCh:       make(chan relayRequest),
		queryCh:          make(chan func(*hubState)),
		effectsCh:        make(chan sideEffect, defaultSideEffectBuffer),
		presenceInterval: defaultPresenceInterval,
		state:            newHubState(time.Now, uuid.NewString, nil),
		done:             make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run is the hub loop. It returns once ctx is cancelled, after every room has
// been closed and every client's send channel has been closed. Call it once.
func (m *ManagerService) Run(ctx context.Context) {
	slog.Info("hub started", "presence_interval", m.presenceInterval)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		m.runSideEffects(m.effectsCh)
	}()

	ticker := time.NewTicker(m.presenceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			close(m.effectsCh)
			<-workerDone
			close(m.done)
			slog.Info("hub stopped")
			return

		case reg := <-m.registerCh:
			id, err := m.state.join(reg.client, reg.profile)
			m.flush()
			reg.reply <- registrationResult{id: id, err: err}

		case req := <-m.unregisterCh:
			client, err := m.state.disconnect(req.sessionID)
			m.flush()
			if client != nil {
				client.Close()
			}
			req.reply <- err

		case req := <-m.matchCh:
			err := m.state.requestMatch(req.sessionID)
			m.flush()
			req.reply <- err

		case req := <-m.cancelCh:
			err := m.state.cancel(req.sessionID)
			m.flush()
			req.reply <- err

		case req := <-m.leaveCh:
			err := m.state.leave(req.sessionID, models.EndReasonLeave)
			m.flush()
			req.reply <- err

		case req := <-m.incomingCh:
			err := m.state.relay(req.from, req.roomID, req.event)
			m.flush()
			req.reply <- err

		case fn := <-m.queryCh:
			fn(m.state)

		case <-ticker.C:
			m.state.broadcastPresence()
			m.Metrics.Inc(metrics.PresenceBroadcasts)
			m.flush()
		}
	}
}

// Done is closed when Run has returned.
func (m *ManagerService) Done() <-chan struct{} {
	return m.done
}

func (m *ManagerService) shutdown() {
	m.state.closeAllRooms()
	m.flush()
	clients := m.state.dropAll()
	for _, c := range clients {
		c.Close()
	}
	slog.Info("hub shutdown complete", "clients_closed", len(clients))
}

// flush hands queued events to clients without blocking the loop and queues
// side effects for the storage worker.
func (m *ManagerService) flush() {
	for _, d := range m.state.outbox {
		e, err := m.state.registry.get(d.to)
		if err != nil {
			continue
		}
		select {
		case e.client.GetSendChannel() <- d.event:
		default:
			m.Metrics.Inc(metrics.DeliveryDropped)
			slog.Warn("client buffer full, event dropped", "session", d.to, "event", d.event.Type)
		}
	}
	clear(m.state.outbox)
	m.state.outbox = m.state.outbox[:0]

	for _, eff := range m.state.effects {
		select {
		case m.effectsCh <- eff:
		default:
			m.Metrics.Inc(metrics.SideEffectsDropped)
			slog.Warn("storage queue full, side effect dropped")
		}
	}
	clear(m.state.effects)
	m.state.effects = m.state.effects[:0]
}

func (m *ManagerService) do(ch chan request, sessionID string) error {
	req := request{sessionID: sessionID, reply: make(chan error, 1)}
	select {
	case ch <- req:
	case <-m.done:
		return ErrHubStopped
	}
	return <-req.reply
}

func (m *ManagerService) query(fn func(*hubState)) error {
	finished := make(chan struct{})
	wrapped := func(s *hubState) {
		defer close(finished)
		fn(s)
	}
	select {
	case m.queryCh <- wrapped:
	case <-m.done:
		return ErrHubStopped
	}
	<-finished
	return nil
}

// Join registers client as a new Idle session and returns its id. The client
// receives a joined event. ErrDuplicateSession is returned when the client
// asked for an id that is already connected.
func (m *ManagerService) Join(client Client, profile models.Profile) (string, error) {
	reg := registration{client: client, profile: profile, reply: make(chan registrationResult, 1)}
	select {
	case m.registerCh <- reg:
	case <-m.done:
		return "", ErrHubStopped
	}
	res := <-reg.reply
	return res.id, res.err
}

// Disconnect removes the session, cleaning up its queue entry or room first,
// and closes its client.
func (m *ManagerService) Disconnect(sessionID string) error {
	return m.do(m.unregisterCh, sessionID)
}

// FindMatch pairs the session with the longest-waiting other session or queues it.
func (m *ManagerService) FindMatch(sessionID string) error {
	return m.do(m.matchCh, sessionID)
}

// Cancel takes a Waiting session out of the queue.
func (m *ManagerService) Cancel(sessionID string) error {
	return m.do(m.cancelCh, sessionID)
}

// Leave ends the session's current room. The partner gets partner-left.
func (m *ManagerService) Leave(sessionID string) error {
	return m.do(m.leaveCh, sessionID)
}

// Relay forwards a negotiation or chat event from a room member to the other
// member. An empty roomID targets the sender's current room.
func (m *ManagerService) Relay(from, roomID string, ev models.Event) error {
	req := relayRequest{from: from, roomID: roomID, event: ev, reply: make(chan error, 1)}
	select {
	case m.incomingCh <- req:
	case <-m.done:
		return ErrHubStopped
	}
	return <-req.reply
}

// Session returns a copy of the session's current record.
func (m *ManagerService) Session(sessionID string) (models.Session, error) {
	var (
		sess models.Session
		err  error
	)
	if qerr := m.query(func(s *hubState) {
		var e *entry
		if e, err = s.registry.get(sessionID); err == nil {
			sess = e.session
			sess.Profile = sess.Profile.Clone()
		}
	}); qerr != nil {
		return models.Session{}, qerr
	}
	return sess, err
}

// RoomOf returns the room the session is in.
func (m *ManagerService) RoomOf(sessionID string) (string, bool) {
	var (
		roomID string
		ok     bool
	)
	_ = m.query(func(s *hubState) { roomID, ok = s.roomOf(sessionID) })
	return roomID, ok
}

// Count returns the number of registered sessions, 0 once the hub has stopped.
func (m *ManagerService) Count() int {
	n := 0
	_ = m.query(func(s *hubState) { n = s.registry.count() })
	return n
}

// Snapshot returns a consistent copy of sessions, queue and rooms.
func (m *ManagerService) Snapshot() Snapshot {
	var snap Snapshot
	_ = m.query(func(s *hubState) { snap = s.snapshot() })
	return snap
}
