package api

import (
	"github.com/gin-gonic/gin"
)

// Configures all API routes
func (s *Server) setupRoutes(router *gin.Engine) {
	// API version prefix
	v1 := router.Group("/api/v1")

	// Health check endpoint
	v1.GET("/health", s.getHandlerHealth())

	// Batch submission and history
	batches := v1.Group("/batches")
	{
		batches.POST("", s.getHandlerSubmitBatch())
		batches.GET("", s.getHandlerListBatches())
		batches.GET("/:id", s.getHandlerGetBatch())
	}

	// Read side of the guestbook contract
	contract := v1.Group("/contract")
	{
		contract.GET("/stats", s.getHandlerContractStats())
		contract.GET("/messages", s.getHandlerRecentMessages())
	}

	// Prometheus scrape endpoint, outside the versioned API
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}
