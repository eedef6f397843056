package commands

import (
	"time"

	"github.com/spf13/cobra"
)

// Pay command (send payments with notes)
var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Send a batch of payments through the payments contract",
	Long: `Send payments with generated notes through the payments contract's
sendMessage function. Recipients given with --recipient are cycled in order;
without any, a built-in list is used.

Requires --payments.`,
	Example: `  # Send 5 payments to the default recipients
  guestctl --payments=0x... pay

  # Pay two addresses alternately, 0.001 ETH each
  guestctl --payments=0x... pay --count 6 --amount 0.001 \
    --recipient 0xC9b1E7DBE24E29D1F9a917Ea24697C704ABBFeE0 \
    --recipient 0x7273dE585311a5139Ef83f0F6Dbb29F3e57b3389`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// GetPayCommand returns the pay command for handler assignment
func GetPayCommand() *cobra.Command {
	return payCmd
}

// SetupPayFlags configures flags for the pay command
func SetupPayFlags(cmd *cobra.Command, count *int, recipients *[]string, amount *string,
	delayMs, maxAttempts *int, retryInterval *time.Duration,
	defaultCount int, defaultAmount string, defaultDelayMs, defaultMaxAttempts int,
	defaultRetryInterval time.Duration) {
	cmd.Flags().IntVar(count, "count", defaultCount, "Number of payments")
	cmd.Flags().StringArrayVar(recipients, "recipient", nil, "Recipient address (repeatable)")
	cmd.Flags().StringVar(amount, "amount", defaultAmount, "Ether per payment")
	cmd.Flags().IntVarP(delayMs, "delay", "d", defaultDelayMs, "Delay between transactions in milliseconds")
	cmd.Flags().IntVar(maxAttempts, "max-attempts", defaultMaxAttempts, "Attempts per operation")
	cmd.Flags().DurationVar(retryInterval, "retry-interval", defaultRetryInterval, "Pause between attempts")
}
