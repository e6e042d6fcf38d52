package chathub

import "strangerlink/backend/internal/models"

// Client is the interface for any type of connection (e.g., WebSocket, Telegram).
// It abstracts the underlying communication mechanism, allowing the hub to manage
// different client types uniformly.
type Client interface {
	// SessionID returns the id the client asks to be registered under.
	// An empty string lets the hub generate one.
	SessionID() string

	// GetSendChannel returns the channel to which the ManagerService (hub) sends
	// events intended for this specific client. The hub never blocks on it:
	// when the buffer is full the event is dropped.
	GetSendChannel() chan<- models.Event

	// Run starts the client's pumps.
	Run()
	// Close is called by the hub exactly once, after the session has been
	// removed. It must close the send channel.
	Close()
}
