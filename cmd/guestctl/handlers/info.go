package handlers

import (
	"github.com/spf13/cobra"

	"github.com/concave-dev/guestbook/cmd/guestctl/client"
	"github.com/concave-dev/guestbook/cmd/guestctl/config"
	"github.com/concave-dev/guestbook/cmd/guestctl/display"
	"github.com/concave-dev/guestbook/cmd/guestctl/utils"
	"github.com/concave-dev/guestbook/internal/logging"
)

// HandleInfo handles the info command.
func HandleInfo(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()
	if err := requireAPI("daemon health"); err != nil {
		return err
	}

	logging.Info("Fetching health from API server: %s", config.Global.APIAddr)
	health, err := client.CreateAPIClient().GetHealth()
	if err != nil {
		return err
	}

	display.DisplayHealth(config.Global.APIAddr, health)
	return nil
}
