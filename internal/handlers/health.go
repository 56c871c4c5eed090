package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/augustos0204/room-stream-api/internal/metrics"
	"github.com/augustos0204/room-stream-api/internal/storage"
)

type HealthHandler struct {
	repo       storage.RoomRepository
	aggregator *metrics.Aggregator
	startTime  time.Time
}

func NewHealthHandler(repo storage.RoomRepository, aggregator *metrics.Aggregator) *HealthHandler {
	return &HealthHandler{repo: repo, aggregator: aggregator, startTime: time.Now()}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"uptime":           time.Since(h.startTime).Milliseconds(),
		"storage":          h.repo.Name(),
		"connectedClients": h.aggregator.ConnectedClients(),
		"timestamp":        time.Now().Format(time.RFC3339),
	})
}
