package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/concave-dev/guestbook/cmd/guestctl/config"
	"github.com/concave-dev/guestbook/cmd/guestctl/utils"
	"github.com/concave-dev/guestbook/internal/batching"
	"github.com/concave-dev/guestbook/internal/chain"
	"github.com/concave-dev/guestbook/internal/plan"
)

// HandlePay handles the pay command. Locally it needs --payments; the daemon
// uses its own payments contract.
func HandlePay(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	if !remote() && config.Global.PaymentsAddress == "" {
		return fmt.Errorf("--payments is required to send payments")
	}

	groups, cfg, err := BuildPayments()
	if err != nil {
		return err
	}

	return executeBatch(groups, cfg, "", true)
}

// BuildPayments resolves the pay flags into a single payment group.
func BuildPayments() ([][]batching.Operation, *batching.Config, error) {
	amount, err := chain.ParseEther(config.Pay.Amount)
	if err != nil {
		return nil, nil, err
	}

	cfg := &batching.Config{
		PacingDelay:   utils.Millis(config.Pay.DelayMs),
		MaxAttempts:   config.Pay.MaxAttempts,
		RetryInterval: config.Pay.RetryInterval,
	}

	return [][]batching.Operation{plan.Payments(config.Pay.Count, config.Pay.Recipients, amount)}, cfg, nil
}
