package chathub_test

import (
	"sync/atomic"
	"testing"
	"time"

	"strangerlink/backend/internal/models"
)

const eventTimeout = time.Second

type MockClient struct {
	id          string
	RecvChannel chan models.Event
	closed      atomic.Int32
}

// newMockClient returns a client that asks for id (empty lets the hub choose).
func newMockClient(id string) *MockClient {
	return &MockClient{
		id:          id,
		RecvChannel: make(chan models.Event, 64),
	}
}

func (c *MockClient) SessionID() string {
	return c.id
}

func (c *MockClient) GetSendChannel() chan<- models.Event {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.closed.Add(1)
	close(c.RecvChannel)
}

// next returns the next non-presence event.
func (c *MockClient) next(t *testing.T) models.Event {
	t.Helper()
	deadline := time.After(eventTimeout)
	for {
		select {
		case ev, ok := <-c.RecvChannel:
			if !ok {
				t.Fatalf("client %s: channel closed while waiting for an event", c.id)
			}
			if ev.Type == models.EventOnlineCount {
				continue
			}
			return ev
		case <-deadline:
			t.Fatalf("client %s: no event within %s", c.id, eventTimeout)
			return models.Event{}
		}
	}
}

// expectNext fails unless the next non-presence event has type want.
func (c *MockClient) expectNext(t *testing.T, want models.EventType) models.Event {
	t.Helper()
	ev := c.next(t)
	if ev.Type != want {
		t.Fatalf("client %s: got %q, want %q", c.id, ev.Type, want)
	}
	return ev
}

// expectNone fails if a non-presence event is already queued.
func (c *MockClient) expectNone(t *testing.T) {
	t.Helper()
	for {
		select {
		case ev, ok := <-c.RecvChannel:
			if !ok {
				return
			}
			if ev.Type == models.EventOnlineCount {
				continue
			}
			t.Fatalf("client %s: unexpected event %q", c.id, ev.Type)
		default:
			return
		}
	}
}

// nextCount returns the next online-count value, skipping everything else.
func (c *MockClient) nextCount(t *testing.T) int {
	t.Helper()
	deadline := time.After(eventTimeout)
	for {
		select {
		case ev, ok := <-c.RecvChannel:
			if !ok {
				t.Fatalf("client %s: channel closed while waiting for online-count", c.id)
			}
			if ev.Type == models.EventOnlineCount && ev.Count != nil {
				return *ev.Count
			}
		case <-deadline:
			t.Fatalf("client %s: no online-count within %s", c.id, eventTimeout)
			return 0
		}
	}
}

// isClosed reports whether the hub closed the channel.
func (c *MockClient) isClosed() bool {
	return c.closed.Load() > 0
}
