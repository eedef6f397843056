package commands

import (
	"github.com/spf13/cobra"

	"github.com/concave-dev/guestbook/cmd/guestbookd/config"
	internalconfig "github.com/concave-dev/guestbook/internal/config"
)

// SetupFlags configures all command line flags for the daemon
func SetupFlags(cmd *cobra.Command) {
	// API flags
	cmd.Flags().StringVar(&config.Global.APIAddr, "api", config.DefaultAPI,
		"Address and port for the HTTP API server (e.g., "+config.DefaultAPI+")")

	// Chain flags
	cmd.Flags().StringVar(&config.Global.RPCURL, "rpc", internalconfig.DefaultRPCURL,
		"Chain JSON-RPC endpoint (http, https, ws or wss)")
	cmd.Flags().StringVar(&config.Global.GuestbookAddress, "guestbook", internalconfig.DefaultGuestbookAddress,
		"GuestBook contract address")
	cmd.Flags().StringVar(&config.Global.PaymentsAddress, "payments", "",
		"Payments contract address (payments are rejected when unset)")
	cmd.Flags().Int64Var(&config.Global.ChainID, "chain-id", 0,
		"Chain ID (0 asks the node)")
	cmd.Flags().DurationVar(&config.Global.ReceiptTimeout, "receipt-timeout", internalconfig.DefaultReceiptTimeout,
		"Upper bound on waiting for one transaction receipt")
	cmd.Flags().StringVar(&config.Global.EnvFile, "env-file", config.DefaultEnvFile,
		"File to load GUESTBOOK_PRIVATE_KEY from, if present")

	// Queue and storage flags
	cmd.Flags().IntVar(&config.Global.QueueSize, "queue-size", internalconfig.DefaultQueueSize,
		"Batches that may wait behind the running one before submissions get 429")
	cmd.Flags().StringVar(&config.Global.DataDir, "data-dir", config.DefaultDataDir,
		"Directory for the batch history")
	cmd.Flags().BoolVar(&config.Global.InMemory, "in-memory", false,
		"Keep batch history in memory only")

	// Operational flags
	cmd.Flags().StringVar(&config.Global.LogLevel, "log-level", config.DefaultLogLevel,
		"Log level: DEBUG, INFO, WARN, ERROR")
	cmd.Flags().StringVar(&config.Global.LogFile, "log-file", "",
		"Write logs to this file instead of the terminal")
}

// CheckExplicitFlags checks if flags were explicitly set by the user
func CheckExplicitFlags(cmd *cobra.Command) {
	config.Global.SetExplicitlySet(config.APIAddrField, cmd.Flags().Changed("api"))
	config.Global.SetExplicitlySet(config.DataDirField, cmd.Flags().Changed("data-dir"))
	config.Global.SetExplicitlySet(config.LogFileField, cmd.Flags().Changed("log-file"))
}
