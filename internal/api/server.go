// Package api provides the HTTP API server of guestbookd.
// The server accepts batches for background submission, serves their history
// and exposes read-only contract state so guestctl and the browser front end
// never need the signer key themselves.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/concave-dev/guestbook/internal/api/handlers"
	"github.com/concave-dev/guestbook/internal/logging"
	"github.com/concave-dev/guestbook/internal/metrics"
	"github.com/concave-dev/guestbook/internal/netutil"
	"github.com/concave-dev/guestbook/internal/version"
	"github.com/gin-gonic/gin"
)

// Represents the guestbook API server
type Server struct {
	dispatcher Dispatcher
	history    handlers.BatchHistory
	chain      handlers.ContractReader
	metrics    *metrics.Metrics
	node       handlers.NodeInfo
	httpServer *http.Server
	bindAddr   string
	bindPort   int
	startTime  time.Time
}

// NewServer creates a new API server instance
func NewServer(config *Config) *Server {
	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		dispatcher: config.Dispatcher,
		history:    config.History,
		chain:      config.Chain,
		metrics:    config.Metrics,
		node:       config.Node,
		bindAddr:   config.BindAddr,
		bindPort:   config.BindPort,
		startTime:  time.Now(),
	}
}

// Handler builds the router with middleware and routes attached
func (s *Server) Handler() http.Handler {
	router := gin.New()

	// Configure Gin logging only if not already configured by CLI tools
	if !logging.IsConfiguredByCLI() {
		gin.DefaultWriter = logging.NewLevelWriter("INFO", "gin")
		gin.DefaultErrorWriter = logging.NewLevelWriter("ERROR", "gin")
	}

	router.Use(s.loggingMiddleware())
	router.Use(s.corsMiddleware())
	router.Use(gin.Recovery())

	s.setupRoutes(router)
	return router
}

// Start starts the API server on the configured address
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.bindAddr, s.bindPort)
	logging.Info("Starting HTTP API server on %s", addr)

	// Bind synchronously so address errors surface to the caller
	listener, err := netutil.ListenTCP(s.bindAddr, s.bindPort)
	if err != nil {
		return err
	}

	s.Serve(listener)
	logging.Success("HTTP API server started successfully")
	return nil
}

// Serve starts serving on an existing listener in the background. Tests pass
// a listener on port 0.
func (s *Server) Serve(listener net.Listener) {
	s.httpServer = &http.Server{
		Addr:    listener.Addr().String(),
		Handler: s.Handler(),
		// Timeouts for production
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("HTTP server failed: %v", err)
		}
	}()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down HTTP API server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// getHandlerHealth is a health endpoint handler factory
func (s *Server) getHandlerHealth() gin.HandlerFunc {
	return handlers.HandleHealth(version.GuestbookdVersion, s.startTime, s.node, s.dispatcher)
}

// getHandlerSubmitBatch is a batch submission handler factory
func (s *Server) getHandlerSubmitBatch() gin.HandlerFunc {
	return handlers.SubmitBatch(s.dispatcher)
}

// getHandlerListBatches is a batch listing handler factory
func (s *Server) getHandlerListBatches() gin.HandlerFunc {
	return handlers.ListBatches(s.history)
}

// getHandlerGetBatch is a batch by ID handler factory
func (s *Server) getHandlerGetBatch() gin.HandlerFunc {
	return handlers.GetBatch(s.history)
}

// getHandlerContractStats is a contract stats handler factory
func (s *Server) getHandlerContractStats() gin.HandlerFunc {
	return handlers.ContractStats(s.chain)
}

// getHandlerRecentMessages is a guestbook messages handler factory
func (s *Server) getHandlerRecentMessages() gin.HandlerFunc {
	return handlers.RecentMessages(s.chain)
}
