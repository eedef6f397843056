// Package config provides configuration management for the guestctl CLI.
package config

import (
	"time"

	"github.com/concave-dev/guestbook/internal/config"
	"github.com/concave-dev/guestbook/internal/version"
)

// Version returns the current guestctl CLI version from the centralized version package
var Version = version.GuestctlVersion

// Global holds the global CLI configuration
var Global struct {
	RPCURL           string // Chain JSON-RPC endpoint for local execution
	GuestbookAddress string // GuestBook contract address
	PaymentsAddress  string // Payments contract address (optional)
	APIAddr          string // guestbookd address; empty means run locally
	EnvFile          string // .env file holding the signer key
	LogLevel         string // Log level for CLI operations
	Timeout          int    // Connection timeout in seconds
	Verbose          bool   // Show verbose output
	Output           string // Output format: table, json
}

// Run holds the run command configuration
var Run struct {
	Operation     string        // messages, todos or both
	Messages      int           // Number of generated messages
	Todos         int           // Number of generated todos
	DelayMs       int           // Pacing between transactions in milliseconds
	Name          string        // Custom single message: author name
	Message       string        // Custom single message: text
	Title         string        // Custom single todo: title
	Description   string        // Custom single todo: description
	TodoFee       string        // Ether attached to each createTodo
	MaxAttempts   int           // Attempts per operation
	RetryInterval time.Duration // Pause between attempts
	File          string        // Plan file (YAML, JSON or TOML)
	BatchName     string        // Name recorded by the daemon
	Wait          bool          // Poll the daemon until the batch finishes
}

// Pay holds the pay command configuration
var Pay struct {
	Count         int      // Number of payments
	Recipients    []string // Recipients cycled in order
	Amount        string   // Ether per payment
	DelayMs       int      // Pacing between transactions in milliseconds
	MaxAttempts   int
	RetryInterval time.Duration
}

// Read holds the read command configuration
var Read struct {
	Last int // Number of newest messages to show
}

// Batch holds the batch command configuration
var Batch struct {
	Limit int // Number of records to list
}

// Defaults the flags are registered with
const (
	DefaultOperation = "messages"
	DefaultMessages  = 5
	DefaultTodos     = 3
	DefaultPayments  = 5
	DefaultReadLast  = 10
	DefaultListLimit = 20
)

// DefaultDelayMs is the default pacing in milliseconds
var DefaultDelayMs = int(config.DefaultPacingDelay / time.Millisecond)
