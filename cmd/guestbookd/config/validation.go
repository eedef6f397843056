package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/concave-dev/guestbook/internal/api/dispatch"
	"github.com/concave-dev/guestbook/internal/logging"
	"github.com/concave-dev/guestbook/internal/validate"
)

// InitializeConfig applies environment overrides before validation.
// DEBUG=true forces the DEBUG log level and QUEUE_SIZE overrides --queue-size.
func InitializeConfig() {
	if os.Getenv("DEBUG") == "true" {
		Global.LogLevel = "DEBUG"
		logging.Info("DEBUG environment variable detected, setting log level to DEBUG")
	}

	if queueEnv := os.Getenv("QUEUE_SIZE"); queueEnv != "" {
		if n, err := strconv.Atoi(queueEnv); err == nil {
			Global.QueueSize = n
			logging.Info("QUEUE_SIZE environment variable detected, setting queue size to %d", n)
		} else {
			logging.Warn("Invalid QUEUE_SIZE environment variable '%s', using: %d", queueEnv, Global.QueueSize)
		}
	}
}

// ValidateConfig validates and normalizes the daemon configuration. The API
// address is split into host and port, and the port must be explicit.
func ValidateConfig() error {
	Global.LogLevel = strings.ToUpper(Global.LogLevel)
	if err := logging.ValidateLogLevel(Global.LogLevel); err != nil {
		return err
	}

	netAddr, err := validate.ParseBindAddress(Global.APIAddr)
	if err != nil {
		logging.Error("Invalid API address '%s': %v", Global.APIAddr, err)
		return fmt.Errorf("invalid API address: %w", err)
	}
	if err := validate.ValidateField(netAddr.Port, "required,min=1,max=65535"); err != nil {
		logging.Error("API port cannot be 0 (auto-assigned) - clients need a known port")
		return fmt.Errorf("API address requires specific port (not 0): %w", err)
	}
	Global.APIAddr = netAddr.Host
	Global.APIPort = netAddr.Port

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
	if Global.ChainID < 0 {
		return fmt.Errorf("chain id cannot be negative, got %d", Global.ChainID)
	}
	if err := validate.ValidatePositiveTimeout(Global.ReceiptTimeout, "receipt timeout"); err != nil {
		return err
	}

	if err := (&dispatch.Config{QueueSize: Global.QueueSize}).Validate(); err != nil {
		return err
	}

	if !Global.InMemory {
		if Global.IsExplicitlySet(DataDirField) {
			if err := validate.ValidateRequiredString(Global.DataDir, "data directory"); err != nil {
				return err
			}
		} else if Global.DataDir == "" {
			Global.DataDir = DefaultDataDir
		}
	}

	return nil
}
