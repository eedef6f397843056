package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/concave-dev/guestbook/internal/logging"
	"github.com/gin-gonic/gin"
)

// quietRequest reports whether a request is routine polling that should be
// logged at DEBUG: metrics scrapes, health probes and guestctl waiting on a
// batch record.
func quietRequest(method, path string, status int) bool {
	if method != http.MethodGet || status >= http.StatusBadRequest {
		return false
	}
	switch path {
	case "/metrics", "/api/v1/health":
		return true
	}
	return strings.HasPrefix(path, "/api/v1/batches/")
}

// loggingMiddleware provides request logging
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log := logging.Info
		if quietRequest(param.Method, param.Path, param.StatusCode) {
			log = logging.Debug
		}

		log("%s %s %s %d %s (%s) %s",
			param.ClientIP,
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency.Round(time.Microsecond),
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
		return ""
	})
}

// corsMiddleware lets the browser front end submit batches and read their
// status. Location is exposed so it can follow a 202 to the batch record.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Accept, Content-Type")
		c.Header("Access-Control-Expose-Headers", "Location")
		c.Header("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
