package metrics

import "sync"

// Event counter names.
const (
	SessionsJoined     = "sessions_joined"
	SessionsRejected   = "sessions_rejected_duplicate"
	SessionsLeft       = "sessions_disconnected"
	MatchesMade        = "matches_made"
	QueueEntered       = "queue_entered"
	QueueCancelled     = "queue_cancelled"
	RoomsClosed        = "rooms_closed"
	Relayed            = "relay_delivered"
	RelayUnauthorized  = "relay_dropped_unauthorized"
	RelayStaleRoom     = "relay_dropped_stale_room"
	DeliveryDropped    = "delivery_dropped_unreachable"
	PresenceBroadcasts = "presence_broadcasts"
	SideEffectsDropped = "side_effects_dropped"
)

// Metrics is a minimal, concurrency-safe counter registry.
// A nil *Metrics is valid and counts nothing.
type Metrics struct {
	mu sync.Mutex
	m  map[string]uint64
}

func New() *Metrics {
	return &Metrics{
		m: make(map[string]uint64),
	}
}

func (m *Metrics) Inc(name string) {
	m.Add(name, 1)
}

func (m *Metrics) Add(name string, n uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.m[name] += n
	m.mu.Unlock()
}

func (m *Metrics) Get(name string) uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.m[name]
}

// Snapshot returns a copy of all counters.
func (m *Metrics) Snapshot() map[string]uint64 {
	if m == nil {
		return map[string]uint64{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uint64, len(m.m))
	for k, v := range m.m {
		out[k] = v
	}
	return out
}
