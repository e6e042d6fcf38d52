package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every endpoint on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/anonid", h.GetAnonID)  // Отримання JWT для AnonID
	r.GET("/ws", h.ServeWebSocket) // WebSocket Upgrade
	r.GET("/stats", h.GetStats)
	r.GET("/metrics", h.ServeMetrics())
}
