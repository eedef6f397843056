// Package api provides HTTP API server configuration for the guestbook daemon.
//
// This file defines the configuration structure and validation logic for the
// REST API that accepts batches and exposes their history. The Config acts as
// a dependency injection container: the daemon builds the dispatcher, history
// store, chain client and metrics, and hands them to the server here. Every
// collaborator is an interface so handlers can be exercised with test doubles.
package api

import (
	"fmt"

	"github.com/concave-dev/guestbook/internal/api/dispatch"
	"github.com/concave-dev/guestbook/internal/api/handlers"
	"github.com/concave-dev/guestbook/internal/config"
	"github.com/concave-dev/guestbook/internal/history"
	"github.com/concave-dev/guestbook/internal/metrics"
	"github.com/concave-dev/guestbook/internal/validate"
)

// Dispatcher queues batches and reports queue depth.
// Implemented by dispatch.Dispatcher.
type Dispatcher interface {
	Enqueue(job dispatch.Job) (*history.Record, error)
	GetMetrics() map[string]int64
}

// Config holds all configuration parameters required for running the HTTP
// API server inside guestbookd.
//
// TODO: Add support for TLS/HTTPS configuration (cert/key files)
type Config struct {
	BindAddr   string                  // HTTP server bind address (e.g., "127.0.0.1")
	BindPort   int                     // HTTP server bind port
	Dispatcher Dispatcher              // Batch queue feeding the single submission worker
	History    handlers.BatchHistory   // Stored batch records
	Chain      handlers.ContractReader // Read side of the guestbook contract
	Metrics    *metrics.Metrics        // Served at /metrics when set
	Node       handlers.NodeInfo       // Signer identity reported by /health
}

// DefaultConfig creates a Config bound to loopback on the default port.
// Collaborators must be set by the caller.
func DefaultConfig() *Config {
	return &Config{
		BindAddr: config.DefaultBindAddr,
		BindPort: config.DefaultAPIPort,
	}
}

// Validate checks the network settings and that every required collaborator
// is wired.
func (c *Config) Validate() error {
	if err := validate.ValidateRequiredString(c.BindAddr, "bind address"); err != nil {
		return err
	}
	if err := validate.ValidatePortRange(c.BindPort); err != nil {
		return fmt.Errorf("bind port validation failed: %w", err)
	}
	if c.Dispatcher == nil {
		return fmt.Errorf("dispatcher cannot be nil")
	}
	if c.History == nil {
		return fmt.Errorf("history store cannot be nil")
	}
	if c.Chain == nil {
		return fmt.Errorf("chain reader cannot be nil")
	}

	return nil
}
