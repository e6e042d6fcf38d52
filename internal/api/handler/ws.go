package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"strangerlink/backend/internal/chathub"

	"github.com/gin-gonic/gin"
)

// ticketFrom returns the ticket from ?token= or an Authorization: Bearer header.
func ticketFrom(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// ServeWebSocket оновлює HTTP-з'єднання до WebSocket.
// A ticket is optional: without one the hub assigns a fresh session id; with a
// valid one the session reuses the ticket's anon id.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	anonID := ""
	if token := ticketFrom(c); token != "" {
		id, err := h.validateAndGetAnonID(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}
		anonID = id
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		slog.Debug("websocket upgrade failed", "remote", c.ClientIP(), "error", err)
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, conn, anonID, h.clientBuffer)
	client.Run()
}
