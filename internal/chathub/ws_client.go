package chathub

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"strangerlink/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // SDP offers with many candidates are several KiB
)

// WebSocketClient реалізує інтерфейс chathub.Client
type WebSocketClient struct {
	// AnonID is the id from a validated ticket, empty for a fresh session.
	AnonID string
	Conn   *websocket.Conn
	Hub    *ManagerService
	Send   chan models.Event

	// sessionID is set once the hub accepted join. Only readPump touches it.
	sessionID string
}

// NewWebSocketClient wires a connection to the hub. buffer bounds how many
// outbound events may queue before the hub starts dropping them.
func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, anonID string, buffer int) *WebSocketClient {
	if buffer <= 0 {
		buffer = 256
	}
	return &WebSocketClient{
		AnonID: anonID,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan models.Event, buffer),
	}
}

// --- Реалізація методів інтерфейсу ---

func (c *WebSocketClient) SessionID() string                   { return c.AnonID }
func (c *WebSocketClient) GetSendChannel() chan<- models.Event { return c.Send }

// Run запускає 'pumps' для WebSocket
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close закриває Send канал (що зупинить writePump)
func (c *WebSocketClient) Close() {
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		if c.sessionID == "" {
			// Never registered: the hub does not know this channel.
			close(c.Send)
			return
		}
		if err := c.Hub.Disconnect(c.sessionID); err != nil {
			slog.Debug("disconnect after read loop", "session", c.sessionID, "error", err)
		}
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "session", c.sessionID, "error", err)
			}
			return
		}

		var ev models.Event
		if err := json.Unmarshal(message, &ev); err != nil {
			slog.Debug("invalid JSON from client", "session", c.sessionID, "error", err)
			if c.sessionID == "" {
				c.reply(models.ErrorEvent("malformed message"))
			}
			continue
		}

		if !c.handle(ev) {
			return
		}
	}
}

// handle dispatches one inbound event. It returns false when the connection must be closed.
func (c *WebSocketClient) handle(ev models.Event) bool {
	if ev.Type == models.EventJoin {
		if c.sessionID != "" {
			return true
		}
		var profile models.Profile
		if ev.Profile != nil {
			profile = *ev.Profile
		}
		id, err := c.Hub.Join(c, profile)
		switch {
		case errors.Is(err, ErrDuplicateSession):
			slog.Info("rejecting duplicate session", "session", c.AnonID)
			c.reply(models.ErrorEvent("session already connected"))
			return false
		case err != nil:
			return false
		}
		c.sessionID = id
		return true
	}

	if c.sessionID == "" {
		slog.Debug("event before join ignored", "event", ev.Type)
		return true
	}

	var err error
	switch {
	case ev.Type == models.EventFindMatch:
		err = c.Hub.FindMatch(c.sessionID)
	case ev.Type == models.EventCancel:
		err = c.Hub.Cancel(c.sessionID)
	case ev.Type == models.EventLeaveRoom:
		err = c.Hub.Leave(c.sessionID)
	case ev.Type.IsRelayed():
		err = c.Hub.Relay(c.sessionID, ev.RoomID, ev)
	default:
		slog.Debug("unknown event type", "session", c.sessionID, "event", ev.Type)
	}
	if errors.Is(err, ErrHubStopped) {
		return false
	}
	if err != nil {
		slog.Debug("event ignored", "session", c.sessionID, "event", ev.Type, "error", err)
	}
	return true
}

// reply writes directly to Send. Only valid before join: afterwards the hub owns the channel.
func (c *WebSocketClient) reply(ev models.Event) {
	select {
	case c.Send <- ev:
	default:
	}
}

// writePump читає події з каналу Send і записує їх у WebSocket.
// It owns closing the connection.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Канал закрито, закриваємо з'єднання WS
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(ev); err != nil {
				slog.Debug("websocket write failed", "remote", c.Conn.RemoteAddr().String(), "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
