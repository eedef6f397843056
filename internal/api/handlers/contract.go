package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/concave-dev/guestbook/internal/chain"
	"github.com/concave-dev/guestbook/internal/logging"
)

const (
	defaultMessageCount = 10
	maxMessageCount     = 100

	// chainReadTimeout bounds the RPC calls behind a single request
	chainReadTimeout = 15 * time.Second
)

// ContractReader reads guestbook state from the chain.
// Implemented by chain.Client.
type ContractReader interface {
	Stats(ctx context.Context) (*chain.Stats, error)
	RecentMessages(ctx context.Context, n int) ([]chain.Message, error)
}

// MessagesResponse is the payload for GET /api/v1/contract/messages.
type MessagesResponse struct {
	Messages []chain.Message `json:"messages"`
	Count    int             `json:"count"`
}

// ContractStats returns the signer balance and guestbook counters.
//
// GET /api/v1/contract/stats
func ContractStats(reader ContractReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), chainReadTimeout)
		defer cancel()

		stats, err := reader.Stats(ctx)
		if err != nil {
			logging.Warn("Contract stats: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "Failed to read contract state",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

// RecentMessages returns the newest guestbook entries, newest first.
//
// GET /api/v1/contract/messages?last=N
func RecentMessages(reader ContractReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		last := defaultMessageCount
		if raw := c.Query("last"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxMessageCount {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Invalid message count",
					"details": "last must be an integer between 1 and " + strconv.Itoa(maxMessageCount),
				})
				return
			}
			last = n
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), chainReadTimeout)
		defer cancel()

		messages, err := reader.RecentMessages(ctx, last)
		if err != nil {
			logging.Warn("Contract messages: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "Failed to read guestbook messages",
				"details": err.Error(),
			})
			return
		}
		if messages == nil {
			messages = []chain.Message{}
		}

		c.JSON(http.StatusOK, MessagesResponse{
			Messages: messages,
			Count:    len(messages),
		})
	}
}
