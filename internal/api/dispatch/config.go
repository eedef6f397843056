package dispatch

import (
	"fmt"

	"github.com/concave-dev/guestbook/internal/config"
)

// Config holds the dispatcher queue settings.
type Config struct {
	// QueueSize is how many accepted batches may wait behind the running one.
	QueueSize int `json:"queue_size" mapstructure:"queue_size"`
}

// DefaultConfig returns a Config with the daemon defaults.
func DefaultConfig() *Config {
	return &Config{
		QueueSize: config.DefaultQueueSize,
	}
}

// Validate checks that the queue size is usable.
func (c *Config) Validate() error {
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive, got %d", c.QueueSize)
	}
	if c.QueueSize > 1024 {
		return fmt.Errorf("queue size too large (max 1024), got %d", c.QueueSize)
	}
	return nil
}
