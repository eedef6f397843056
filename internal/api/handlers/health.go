package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/concave-dev/guestbook/internal/resources"
)

// QueueMetrics reports dispatcher queue depth and capacity.
// Implemented by dispatch.Dispatcher.
type QueueMetrics interface {
	GetMetrics() map[string]int64
}

// Represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Sender    string    `json:"sender,omitempty"`
	ChainID   string    `json:"chain_id,omitempty"`
	QueueSize int64     `json:"queue_size"`
	QueueCap  int64     `json:"queue_cap"`

	Resources *resources.Snapshot `json:"resources,omitempty"`
}

// NodeInfo identifies the signer the daemon submits with.
type NodeInfo struct {
	Sender  string
	ChainID string
}

// HandleHealth returns the health status of the API server. queue may be nil.
func HandleHealth(version string, startTime time.Time, info NodeInfo, queue QueueMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		uptime := time.Since(startTime)

		response := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    uptime.Round(time.Second).String(),
			Sender:    info.Sender,
			ChainID:   info.ChainID,
			Resources: resources.Gather(),
		}
		if queue != nil {
			m := queue.GetMetrics()
			response.QueueSize = m["queue_size"]
			response.QueueCap = m["queue_cap"]
		}

		c.JSON(http.StatusOK, response)
	}
}
