package commands

import (
	"github.com/spf13/cobra"
)

// Info command (daemon health)
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show guestbookd health, queue and host resources",
	Long: `Show the daemon's version, uptime, signer and chain, how many batches are
waiting in its queue, and a resource snapshot of the host it runs on.

Requires --api.`,
	Example: `  # Daemon overview
  guestctl --api=127.0.0.1:8088 info

  # Include Go runtime figures
  guestctl --api=127.0.0.1:8088 --verbose info`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// GetInfoCommand returns the info command for handler assignment
func GetInfoCommand() *cobra.Command {
	return infoCmd
}
