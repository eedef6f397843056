package batching

import (
	"fmt"
	"time"

	"github.com/concave-dev/guestbook/internal/config"
)

// Config holds the timing and retry policy for a batch run.
type Config struct {
	PacingDelay   time.Duration `json:"pacing_delay" mapstructure:"pacing"`           // wait between operations
	MaxAttempts   int           `json:"max_attempts" mapstructure:"max_attempts"`     // total attempts per operation
	RetryInterval time.Duration `json:"retry_interval" mapstructure:"retry_interval"` // fixed wait between attempts
}

// DefaultConfig returns 100ms between operations, three attempts and one
// second between attempts.
func DefaultConfig() *Config {
	return &Config{
		PacingDelay:   config.DefaultPacingDelay,
		MaxAttempts:   config.DefaultMaxAttempts,
		RetryInterval: config.DefaultRetryInterval,
	}
}

// Validate checks the policy. Violations are reported as ConfigurationError.
func (c *Config) Validate() error {
	if c == nil {
		return configErrorf("config is nil")
	}
	if c.PacingDelay < 0 {
		return configErrorf("pacing delay cannot be negative, got %v", c.PacingDelay)
	}
	if c.MaxAttempts < 1 {
		return configErrorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.RetryInterval < 0 {
		return configErrorf("retry interval cannot be negative, got %v", c.RetryInterval)
	}
	return nil
}

// String renders the policy for logs.
func (c *Config) String() string {
	return fmt.Sprintf("pacing=%v attempts=%d retry=%v", c.PacingDelay, c.MaxAttempts, c.RetryInterval)
}
