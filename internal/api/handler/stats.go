package handler

import (
	"net/http"

	"strangerlink/backend/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStats returns the current matchmaking numbers.
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.gauges())
}

// ServeMetrics serves counters and gauges in Prometheus text format.
func (h *Handler) ServeMetrics() gin.HandlerFunc {
	return gin.WrapH(metrics.PrometheusHandler(h.Metrics, h.gauges))
}

func (h *Handler) gauges() map[string]int {
	snap := h.Hub.Snapshot()
	return map[string]int{
		"online":  len(snap.Sessions),
		"waiting": snap.Waiting(),
		"rooms":   snap.ActiveRooms(),
	}
}
