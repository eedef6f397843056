package handlers

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/concave-dev/guestbook/cmd/guestctl/client"
	"github.com/concave-dev/guestbook/cmd/guestctl/config"
	"github.com/concave-dev/guestbook/cmd/guestctl/display"
	"github.com/concave-dev/guestbook/cmd/guestctl/utils"
	"github.com/concave-dev/guestbook/internal/chain"
	"github.com/concave-dev/guestbook/internal/logging"
)

// HandleStats handles the stats command. The signer balance is included
// when a key is available.
func HandleStats(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	var stats *chain.Stats
	if remote() {
		logging.Info("Fetching contract stats from API server: %s", config.Global.APIAddr)
		s, err := client.CreateAPIClient().GetContractStats()
		if err != nil {
			return err
		}
		stats = s
	} else {
		chainClient, err := dialChain(false)
		if err != nil {
			return err
		}
		defer chainClient.Close()

		ctx, cancel := readContext()
		defer cancel()
		if stats, err = chainClient.Stats(ctx); err != nil {
			return err
		}
	}

	display.DisplayStats(stats)
	return nil
}

// HandleRead handles the read command.
func HandleRead(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	var messages []chain.Message
	if remote() {
		logging.Info("Fetching messages from API server: %s", config.Global.APIAddr)
		m, err := client.CreateAPIClient().GetRecentMessages(config.Read.Last)
		if err != nil {
			return err
		}
		messages = m
	} else {
		chainClient, err := dialChain(false)
		if err != nil {
			return err
		}
		defer chainClient.Close()

		ctx, cancel := readContext()
		defer cancel()
		if messages, err = chainClient.RecentMessages(ctx, config.Read.Last); err != nil {
			return err
		}
	}

	display.DisplayMessages(messages)
	logging.Success("Retrieved %d messages", len(messages))
	return nil
}

// readContext bounds a read. Each message is its own call, hence the multiple.
func readContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 4*time.Duration(config.Global.Timeout)*time.Second)
}
