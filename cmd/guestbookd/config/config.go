// Package config provides configuration management for the guestbook daemon.
//
// The daemon binds one HTTP API endpoint, dials one chain RPC endpoint and
// keeps its batch history in a badger directory. The signer key never comes
// from a flag: it is read from GUESTBOOK_PRIVATE_KEY, optionally loaded from
// an env file.
//
// EXPLICIT OVERRIDE TRACKING:
// Like the flags, some defaults depend on whether the user set a value. An
// explicitly empty --data-dir is rejected, while the default is used as is,
// and --log-file only takes effect when given.
package config

import (
	"time"

	configDefaults "github.com/concave-dev/guestbook/internal/config"
)

// ConfigField represents a configuration field that can be explicitly set
type ConfigField int

const (
	APIAddrField ConfigField = iota
	DataDirField
	LogFileField
)

const (
	DefaultAPI      = configDefaults.DefaultBindAddr + ":8088" // Default API address
	DefaultDataDir  = configDefaults.DefaultDataDir            // Default history directory
	DefaultLogLevel = configDefaults.DefaultLogLevel           // Default log level
	DefaultEnvFile  = ".env"                                   // Default env file for the signer key
)

// Config holds all daemon configuration values
type Config struct {
	APIAddr          string        // HTTP API server address (host:port)
	APIPort          int           // HTTP API server port (derived from APIAddr)
	RPCURL           string        // Chain JSON-RPC endpoint
	GuestbookAddress string        // GuestBook contract address
	PaymentsAddress  string        // Payments contract address (optional)
	ChainID          int64         // Chain ID; 0 asks the node
	ReceiptTimeout   time.Duration // Upper bound on one receipt wait
	QueueSize        int           // Batches that may wait behind the running one
	DataDir          string        // Batch history directory
	InMemory         bool          // Keep batch history in memory only
	EnvFile          string        // File to load GUESTBOOK_PRIVATE_KEY from
	LogLevel         string        // Log level: DEBUG, INFO, WARN, ERROR
	LogFile          string        // Log file path; empty logs to the terminal

	apiAddrExplicitlySet bool
	dataDirExplicitlySet bool
	logFileExplicitlySet bool
}

// Global configuration instance
var Global Config

// SetExplicitlySet marks a configuration field as explicitly set by the user.
func (c *Config) SetExplicitlySet(field ConfigField, value bool) {
	switch field {
	case APIAddrField:
		c.apiAddrExplicitlySet = value
	case DataDirField:
		c.dataDirExplicitlySet = value
	case LogFileField:
		c.logFileExplicitlySet = value
	}
}

// IsExplicitlySet returns whether a configuration field was explicitly set by the user.
func (c *Config) IsExplicitlySet(field ConfigField) bool {
	switch field {
	case APIAddrField:
		return c.apiAddrExplicitlySet
	case DataDirField:
		return c.dataDirExplicitlySet
	case LogFileField:
		return c.logFileExplicitlySet
	}
	return false
}
