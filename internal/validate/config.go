// Package validate provides configuration validation utilities.
//
// This file implements common validation patterns shared by the CLI and daemon
// config packages: port ranges, required strings and duration bounds.
package validate

import (
	"fmt"
	"time"
)

// ValidatePortRange validates that a port number is within 1-65535.
// Port 0 is rejected because the CLI needs a predictable address to reach.
func ValidatePortRange(port int) error {
	return ValidateField(port, "required,min=1,max=65535")
}

// ValidateRequiredString validates that a string field is not empty.
func ValidateRequiredString(value, fieldName string) error {
	if err := ValidateField(value, "required"); err != nil {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidatePositiveTimeout validates that a timeout duration is positive (> 0).
// Used for receipt waits and HTTP client timeouts.
func ValidatePositiveTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

// ValidateNonNegativeDuration validates that a duration is zero or positive.
// Pacing and retry intervals may legitimately be zero.
func ValidateNonNegativeDuration(d time.Duration, name string) error {
	if d < 0 {
		return fmt.Errorf("%s cannot be negative, got %v", name, d)
	}
	return nil
}
