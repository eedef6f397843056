package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/concave-dev/guestbook/internal/logging"
)

// LoadEnvFile loads variables from path without overriding ones already set
// in the environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Debug("Env file %s not found, using process environment", path)
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	logging.Debug("Loaded environment from %s", path)
	return nil
}

// PrivateKey returns the signer key from the environment after loading
// envFile. The key itself never appears in errors or logs.
func PrivateKey(envFile string) (string, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return "", err
	}
	key := os.Getenv(PrivateKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s is not set (export it or add it to %s)", PrivateKeyEnv, envFile)
	}
	return key, nil
}
