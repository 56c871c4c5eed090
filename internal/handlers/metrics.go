package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/augustos0204/room-stream-api/internal/metrics"
)

type MetricsHandler struct {
	aggregator *metrics.Aggregator
}

func NewMetricsHandler(aggregator *metrics.Aggregator) *MetricsHandler {
	return &MetricsHandler{aggregator: aggregator}
}

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.aggregator.Snapshot())
}
