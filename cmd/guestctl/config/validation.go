// Package config provides configuration management for the guestctl CLI.
package config

import (
	"fmt"
	"strings"

	"github.com/concave-dev/guestbook/internal/logging"
	"github.com/concave-dev/guestbook/internal/plan"
	"github.com/concave-dev/guestbook/internal/validate"
	"github.com/spf13/cobra"
)

// ValidateGlobalFlags validates all global flags before running any command
func ValidateGlobalFlags(cmd *cobra.Command, args []string) error {
	Global.LogLevel = strings.ToUpper(Global.LogLevel)
	if err := logging.ValidateLogLevel(Global.LogLevel); err != nil {
		return err
	}

	if err := ValidateOutputFormat(); err != nil {
		return err
	}

	if Global.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", Global.Timeout)
	}

	if Global.APIAddr != "" {
		if err := ValidateAPIAddress(); err != nil {
			return err
		}
	}

	return ValidateChainFlags()
}

// ValidateAPIAddress validates the --api flag
func ValidateAPIAddress() error {
	netAddr, err := validate.ParseBindAddress(Global.APIAddr)
	if err != nil {
		logging.Error("Invalid API address '%s': %v", Global.APIAddr, err)
		return fmt.Errorf("invalid API address - expected format: host:port (e.g., 127.0.0.1:8088)")
	}

	// Reject unroutable 0.0.0.0 target for client connections
	if netAddr.Host == "0.0.0.0" {
		logging.Error("Unroutable API address '0.0.0.0:%d' - cannot connect to 0.0.0.0", netAddr.Port)
		return fmt.Errorf("unroutable API address - use 127.0.0.1 or a specific IP address")
	}

	if err := validate.ValidatePortRange(netAddr.Port); err != nil {
		logging.Error("Invalid API port %d: %v", netAddr.Port, err)
		return fmt.Errorf("API port must be between 1-65535")
	}

	return nil
}

// ValidateChainFlags validates --rpc, --guestbook and --payments
func ValidateChainFlags() error {
	if err := validate.RPCURL(Global.RPCURL); err != nil {
		return err
	}
	if err := validate.EthAddress(Global.GuestbookAddress, "guestbook address"); err != nil {
		return err
	}
	if Global.PaymentsAddress != "" {
		if err := validate.EthAddress(Global.PaymentsAddress, "payments address"); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOutputFormat validates the --output flag
func ValidateOutputFormat() error {
	validOutputs := map[string]bool{
		"table": true,
		"json":  true,
	}
	if !validOutputs[Global.Output] {
		logging.Error("Invalid output format '%s' - valid formats are: table, json", Global.Output)
		return fmt.Errorf("invalid output format - valid: table, json")
	}
	return nil
}

// ValidateRunFlags validates the run command. Custom single operations need
// both of their fields; a plan file replaces every generator flag.
func ValidateRunFlags(cmd *cobra.Command, args []string) error {
	if (Run.Name == "") != (Run.Message == "") {
		return fmt.Errorf("--name and --message must be given together")
	}
	if (Run.Title == "") != (Run.Description == "") {
		return fmt.Errorf("--title and --description must be given together")
	}

	if Run.File == "" {
		switch Run.Operation {
		case plan.ModeMessages, plan.ModeTodos, plan.ModeBoth:
		default:
			return fmt.Errorf("invalid operation '%s' - valid: %s, %s, %s",
				Run.Operation, plan.ModeMessages, plan.ModeTodos, plan.ModeBoth)
		}
		if Run.Messages < 0 || Run.Todos < 0 {
			return fmt.Errorf("message and todo counts cannot be negative")
		}
	}

	if err := validate.EtherAmount(Run.TodoFee, "todo fee"); err != nil {
		return err
	}
	return validateTiming(Run.DelayMs, Run.MaxAttempts, Run.RetryInterval.Milliseconds())
}

// ValidatePayFlags validates the pay command
func ValidatePayFlags(cmd *cobra.Command, args []string) error {
	if Pay.Count < 1 {
		return fmt.Errorf("payment count must be at least 1, got %d", Pay.Count)
	}
	for _, r := range Pay.Recipients {
		if err := validate.EthAddress(r, "recipient"); err != nil {
			return err
		}
	}
	if err := validate.EtherAmount(Pay.Amount, "amount"); err != nil {
		return err
	}
	return validateTiming(Pay.DelayMs, Pay.MaxAttempts, Pay.RetryInterval.Milliseconds())
}

func validateTiming(delayMs, maxAttempts int, retryMs int64) error {
	if delayMs < 0 {
		return fmt.Errorf("delay cannot be negative, got %d ms", delayMs)
	}
	if maxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", maxAttempts)
	}
	if retryMs < 0 {
		return fmt.Errorf("retry interval cannot be negative")
	}
	return nil
}
