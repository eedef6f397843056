// Package commands provides the CLI command structure for guestbookd.
//
// The daemon is a single root command. Flags configure the API listener, the
// chain endpoint and contracts, the queue and the history directory; the
// signer key comes from the environment only.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/concave-dev/guestbook/cmd/guestbookd/config"
	"github.com/concave-dev/guestbook/cmd/guestbookd/daemon"
	"github.com/concave-dev/guestbook/cmd/guestbookd/utils"
	"github.com/concave-dev/guestbook/internal/logging"
	"github.com/concave-dev/guestbook/internal/version"
)

// Global variable to track log file handle for cleanup
var logFileHandle *os.File

// CleanupLogFile closes the log file handle if it exists
func CleanupLogFile() {
	if logFileHandle != nil {
		if err := logFileHandle.Close(); err != nil {
			// Logging may point at the file being closed
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
		logFileHandle = nil
	}
}

// Root command for the guestbook daemon
var RootCmd = &cobra.Command{
	Use:   "guestbookd",
	Short: "Batch submission daemon for the on-chain guestbook",
	Long: `guestbookd holds the signer key and submits guestbook batches on behalf of
clients. Batches are queued, run one at a time so nonces never race, and kept
in a local history with a full report per batch.

The signer key is read from GUESTBOOK_PRIVATE_KEY (or the --env-file).`,
	Version:      version.GuestbookdVersion,
	SilenceUsage: true,
	Example: `  # Start with defaults (Base mainnet guestbook, API on 127.0.0.1:8088)
  guestbookd

  # Local devnet with payments and a custom history directory
  guestbookd --rpc=http://127.0.0.1:8545 --guestbook=0x... --payments=0x... \
    --data-dir=/var/lib/guestbook

  # Throwaway instance with in-memory history, logging to a file
  guestbookd --in-memory --log-file=/tmp/guestbookd.log`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.DisplayLogo(version.GuestbookdVersion)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		CheckExplicitFlags(cmd)

		if config.Global.IsExplicitlySet(config.LogFileField) && config.Global.LogFile != "" {
			logDir := filepath.Dir(config.Global.LogFile)
			if err := os.MkdirAll(logDir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
			}

			var err error
			logFileHandle, err = os.OpenFile(config.Global.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file %s: %w", config.Global.LogFile, err)
			}

			logging.SetOutput(logFileHandle)
		}

		// Apply the level before InitializeConfig logs anything, then again for env overrides
		logging.SetLevel(config.Global.LogLevel)
		config.InitializeConfig()
		logging.SetLevel(config.Global.LogLevel)

		if err := config.ValidateConfig(); err != nil {
			CleanupLogFile()
			return err
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer CleanupLogFile()
		return daemon.Run()
	},
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	SetupFlags(RootCmd)
}
