package commands

import (
	"fmt"

	"github.com/concave-dev/guestbook/internal/logging"
	"github.com/spf13/cobra"
)

// Batch command (parent command for daemon history)
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Inspect batches submitted to guestbookd",
	Long: `Commands for inspecting the batch history kept by guestbookd.

Requires --api.`,
}

// Batch list command
var batchLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recent batches",
	Example: `  # Newest 20 batches
  guestctl --api=127.0.0.1:8088 batch ls

  # Newest 5 as JSON
  guestctl --api=127.0.0.1:8088 --output=json batch ls --limit 5`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// Batch info command
var batchInfoCmd = &cobra.Command{
	Use:   "info <batch-id>",
	Short: "Show the full report of a batch",
	Example: `  # Report with one row per operation
  guestctl --api=127.0.0.1:8088 batch info 3f2a9c1d4b5e`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			cmd.Help()
			fmt.Println()
			logging.Error("Invalid arguments: expected 1 batch ID, got %d", len(args))
			return fmt.Errorf("requires exactly 1 batch ID")
		}
		return nil
	},
	// RunE will be set by the main package that imports this
}

// GetBatchCommands returns the batch subcommands for handler assignment
func GetBatchCommands() (*cobra.Command, *cobra.Command) {
	return batchLsCmd, batchInfoCmd
}

// SetupBatchFlags configures flags for the batch commands
func SetupBatchFlags(lsCmd *cobra.Command, limit *int, defaultLimit int) {
	lsCmd.Flags().IntVar(limit, "limit", defaultLimit, "Number of batches to list")
}
