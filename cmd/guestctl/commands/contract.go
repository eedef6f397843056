package commands

import (
	"github.com/spf13/cobra"
)

// Stats command (contract and signer overview)
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show guestbook contract and signer statistics",
	Long: `Show the total number of messages, the todo counter and creation fee,
and the signer's balance when a key is available.`,
	Example: `  # Stats straight from the chain
  guestctl stats

  # Stats as seen by the daemon
  guestctl --api=127.0.0.1:8088 stats`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// Read command (newest guestbook messages)
var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Show the newest guestbook messages",
	Example: `  # Last 10 messages
  guestctl read

  # Last 3 messages as JSON
  guestctl --output=json read --last 3`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// GetContractCommands returns the stats and read commands for handler assignment
func GetContractCommands() (*cobra.Command, *cobra.Command) {
	return statsCmd, readCmd
}

// SetupReadFlags configures flags for the read command
func SetupReadFlags(cmd *cobra.Command, last *int, defaultLast int) {
	cmd.Flags().IntVarP(last, "last", "n", defaultLast, "Number of newest messages to show")
}
