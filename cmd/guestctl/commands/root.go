// Package commands provides the complete command tree implementation for guestctl.
//
// COMMAND STRUCTURE:
//   - run: Post generated or custom messages and todos
//   - pay: Send a batch of payments with notes
//   - stats, read: Inspect the guestbook contract
//   - batch: Inspect batches stored by guestbookd (ls, info)
//
// Commands only declare structure and help text. Flags are bound to the config
// package and RunE handlers are assigned by the main package.
package commands

import (
	"github.com/spf13/cobra"
)

// Root command
var RootCmd = &cobra.Command{
	Use:   "guestctl",
	Short: "Batch transaction tool for the on-chain guestbook",
	Long: `guestctl submits batches of guestbook transactions (messages, todos and
payments) one after another, retrying transient failures, and prints a report
of what landed on chain.

Batches run locally with the key in GUESTBOOK_PRIVATE_KEY, or through a
guestbookd daemon when --api is set.`,
	SilenceUsage: true,
	Example: `  # Post 5 generated messages
  guestctl run

  # Post 3 messages then create 2 todos, 1s between transactions
  guestctl run -o both -m 3 -t 2 -d 1000

  # Post one custom message
  guestctl run --name "Alice" --message "Hello World!"

  # Run a plan file through the daemon
  guestctl --api=127.0.0.1:8088 run --file launch.yaml

  # Send 4 payments
  guestctl --payments=0x... pay --count 4

  # Show contract state and the newest messages
  guestctl stats
  guestctl read --last 5

  # Output in JSON format
  guestctl --output=json run -m 2`,
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(payCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(readCmd)
	RootCmd.AddCommand(infoCmd)
	RootCmd.AddCommand(batchCmd)
	batchCmd.AddCommand(batchLsCmd)
	batchCmd.AddCommand(batchInfoCmd)
}

// SetupGlobalFlags configures all global persistent flags
func SetupGlobalFlags(rootCmd *cobra.Command, rpcPtr, guestbookPtr, paymentsPtr, apiAddrPtr, envFilePtr,
	logLevelPtr *string, timeoutPtr *int, verbosePtr *bool, outputPtr *string,
	defaultRPC, defaultGuestbook string) {
	rootCmd.PersistentFlags().StringVar(rpcPtr, "rpc", defaultRPC,
		"Chain JSON-RPC endpoint")
	rootCmd.PersistentFlags().StringVar(guestbookPtr, "guestbook", defaultGuestbook,
		"GuestBook contract address")
	rootCmd.PersistentFlags().StringVar(paymentsPtr, "payments", "",
		"Payments contract address (required by pay)")
	rootCmd.PersistentFlags().StringVar(apiAddrPtr, "api", "",
		"guestbookd address (host:port); run locally when empty")
	rootCmd.PersistentFlags().StringVar(envFilePtr, "env-file", ".env",
		"File to load GUESTBOOK_PRIVATE_KEY from, if present")
	rootCmd.PersistentFlags().StringVar(logLevelPtr, "log-level", "ERROR",
		"Log level: DEBUG, INFO, WARN, ERROR")
	rootCmd.PersistentFlags().IntVar(timeoutPtr, "timeout", 8,
		"Connection timeout in seconds")
	rootCmd.PersistentFlags().BoolVarP(verbosePtr, "verbose", "v", false,
		"Show verbose output")
	// No shorthand: -o belongs to run --operation
	rootCmd.PersistentFlags().StringVar(outputPtr, "output", "table",
		"Output format: table, json")
}
