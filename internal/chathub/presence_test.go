package chathub_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"strangerlink/backend/internal/chathub"
	"strangerlink/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func drain(c *MockClient) {
	for {
		select {
		case <-c.RecvChannel:
		default:
			return
		}
	}
}

func TestPresence_BroadcastsCurrentCount(t *testing.T) {
	published := make(chan int, 1)
	var once sync.Once
	storageMock := new(MockStorage)
	storageMock.On("PublishPresence", mock.Anything, 5).
		Run(func(mock.Arguments) { once.Do(func() { published <- 5 }) }).
		Return(nil).Maybe()
	storageMock.permissive()

	hub := startHub(t, storageMock, chathub.WithPresenceInterval(20*time.Millisecond))

	clients := make([]*MockClient, 5)
	for i := range clients {
		clients[i] = joinClient(t, hub, fmt.Sprintf("p%d", i), models.Profile{})
	}
	for _, c := range clients {
		drain(c)
	}
	for _, c := range clients {
		assert.Equal(t, 5, c.nextCount(t))
	}

	require.NoError(t, hub.Disconnect("p0"))
	// Broadcasts made before Disconnect returned are already buffered.
	for _, c := range clients[1:] {
		drain(c)
	}
	for _, c := range clients[1:] {
		assert.Equal(t, 4, c.nextCount(t))
	}

	select {
	case n := <-published:
		assert.Equal(t, 5, n)
	case <-time.After(eventTimeout):
		t.Fatal("presence was not mirrored to storage")
	}
}

func TestPresence_SkipsUnreachableSessions(t *testing.T) {
	hub := startHub(t, nil, chathub.WithPresenceInterval(20*time.Millisecond))

	stuck := newMockClient("stuck")
	stuck.RecvChannel = make(chan models.Event) // unbuffered, nobody reads
	_, err := hub.Join(stuck, models.Profile{})
	require.NoError(t, err)

	ok := joinClient(t, hub, "ok", models.Profile{})
	assert.Equal(t, 2, ok.nextCount(t))
}
