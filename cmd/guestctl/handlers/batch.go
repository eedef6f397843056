package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/concave-dev/guestbook/cmd/guestctl/client"
	"github.com/concave-dev/guestbook/cmd/guestctl/config"
	"github.com/concave-dev/guestbook/cmd/guestctl/display"
	"github.com/concave-dev/guestbook/cmd/guestctl/utils"
	"github.com/concave-dev/guestbook/internal/logging"
)

func requireAPI(what string) error {
	if !remote() {
		return fmt.Errorf("%s lives on guestbookd - set --api (e.g. --api=127.0.0.1:8088)", what)
	}
	return nil
}

// HandleBatchList handles the batch ls subcommand.
func HandleBatchList(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()
	if err := requireAPI("batch history"); err != nil {
		return err
	}
	if config.Batch.Limit < 1 {
		return fmt.Errorf("limit must be at least 1, got %d", config.Batch.Limit)
	}

	logging.Info("Fetching batches from API server: %s", config.Global.APIAddr)
	batches, err := client.CreateAPIClient().ListBatches(config.Batch.Limit)
	if err != nil {
		return err
	}

	display.DisplayBatches(batches)
	logging.Success("Retrieved %d batches", len(batches))
	return nil
}

// HandleBatchInfo handles the batch info subcommand.
func HandleBatchInfo(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()
	if err := requireAPI("batch history"); err != nil {
		return err
	}

	batchID := args[0]
	logging.Info("Fetching batch '%s' from API server: %s", batchID, config.Global.APIAddr)
	rec, err := client.CreateAPIClient().GetBatch(batchID)
	if err != nil {
		return err
	}

	display.DisplayBatch(rec)
	return nil
}
