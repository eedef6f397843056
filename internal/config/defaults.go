// Package config holds default values shared by guestctl and guestbookd.
//
// Values mirror the settings the guestbook has been operated with on Base:
// fixed per-kind gas ceilings, a small todo creation fee, 100ms pacing between
// transactions and three attempts per operation with a one second pause.
package config

import "time"

const (
	// DefaultBindAddr is the default bind address for the daemon API.
	// The API can spend the operator's funds, so it stays on loopback unless
	// explicitly exposed.
	DefaultBindAddr = "127.0.0.1"

	// DefaultAPIPort is the default HTTP port of guestbookd.
	DefaultAPIPort = 8088

	// DefaultLogLevel is the default log level for all components
	DefaultLogLevel = "INFO"

	// DefaultDataDir is where guestbookd keeps its batch history
	DefaultDataDir = "./data"

	// DefaultRPCURL is the public Base mainnet endpoint
	DefaultRPCURL = "https://mainnet.base.org"

	// DefaultGuestbookAddress is the deployed GuestBook contract
	DefaultGuestbookAddress = "0x086f4eC31A85a4E96d30A99bD80018E9d91e4d42"

	// DefaultTodoFee is the ether amount attached to createTodo
	DefaultTodoFee = "0.00001"

	// DefaultPaymentAmount is the ether amount attached to each sendMessage payment
	DefaultPaymentAmount = "0.000000001696137472"

	// PrivateKeyEnv names the environment variable holding the signer key.
	// Keys are never accepted as flags so they do not end up in shell history.
	PrivateKeyEnv = "GUESTBOOK_PRIVATE_KEY"
)

// Gas ceilings per operation kind.
const (
	DefaultMessageGasLimit uint64 = 200000
	DefaultTodoGasLimit    uint64 = 300000
	DefaultPaymentGasLimit uint64 = 100000
)

// Engine timing defaults.
const (
	DefaultPacingDelay    = 100 * time.Millisecond
	DefaultMaxAttempts    = 3
	DefaultRetryInterval  = 1 * time.Second
	DefaultReceiptTimeout = 2 * time.Minute
	DefaultQueueSize      = 16
)
