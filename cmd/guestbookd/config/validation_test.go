package config

import (
	"testing"

	configDefaults "github.com/concave-dev/guestbook/internal/config"
)

// resetGlobal sets a valid configuration and restores the previous one
func resetGlobal(t *testing.T) {
	t.Helper()
	prev := Global
	t.Cleanup(func() { Global = prev })

	Global = Config{
		APIAddr:          DefaultAPI,
		RPCURL:           configDefaults.DefaultRPCURL,
		GuestbookAddress: configDefaults.DefaultGuestbookAddress,
		ReceiptTimeout:   configDefaults.DefaultReceiptTimeout,
		QueueSize:        configDefaults.DefaultQueueSize,
		DataDir:          DefaultDataDir,
		LogLevel:         "info",
	}
}

// TestValidateConfig tests daemon config validation
func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func()
		wantErr bool
	}{
		{"defaults", func() {}, false},
		{"wildcard api", func() { Global.APIAddr = "0.0.0.0:9000" }, false},
		{"api port zero", func() { Global.APIAddr = "127.0.0.1:0" }, true},
		{"api without port", func() { Global.APIAddr = "127.0.0.1" }, true},
		{"bad log level", func() { Global.LogLevel = "TRACE" }, true},
		{"websocket rpc", func() { Global.RPCURL = "wss://node.example/ws" }, false},
		{"bad rpc", func() { Global.RPCURL = "node.example" }, true},
		{"bad guestbook", func() { Global.GuestbookAddress = "0xzz" }, true},
		{"payments", func() { Global.PaymentsAddress = "0x51f19f71e9d073aab39f6fd003f424984390e5a0" }, false},
		{"bad payments", func() { Global.PaymentsAddress = "0x51F1" }, true},
		{"negative chain id", func() { Global.ChainID = -1 }, true},
		{"zero receipt timeout", func() { Global.ReceiptTimeout = 0 }, true},
		{"zero queue", func() { Global.QueueSize = 0 }, true},
		{"huge queue", func() { Global.QueueSize = 100000 }, true},
		{"explicit empty data dir", func() {
			Global.DataDir = ""
			Global.SetExplicitlySet(DataDirField, true)
		}, true},
		{"in memory ignores data dir", func() {
			Global.DataDir = ""
			Global.InMemory = true
			Global.SetExplicitlySet(DataDirField, true)
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobal(t)
			tt.modify()

			err := ValidateConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidateConfigNormalizes tests address splitting and defaults
func TestValidateConfigNormalizes(t *testing.T) {
	resetGlobal(t)
	Global.APIAddr = "192.168.1.10:9100"
	Global.LogLevel = "warn"
	Global.DataDir = ""

	if err := ValidateConfig(); err != nil {
		t.Fatalf("ValidateConfig() error = %v", err)
	}
	if Global.APIAddr != "192.168.1.10" || Global.APIPort != 9100 {
		t.Errorf("Expected 192.168.1.10 and 9100, got %s and %d", Global.APIAddr, Global.APIPort)
	}
	if Global.LogLevel != "WARN" {
		t.Errorf("Expected WARN, got %s", Global.LogLevel)
	}
	if Global.DataDir != DefaultDataDir {
		t.Errorf("Expected default data dir, got %q", Global.DataDir)
	}
}

// TestInitializeConfig tests environment overrides
func TestInitializeConfig(t *testing.T) {
	resetGlobal(t)
	t.Setenv("DEBUG", "true")
	t.Setenv("QUEUE_SIZE", "64")

	InitializeConfig()

	if Global.LogLevel != "DEBUG" {
		t.Errorf("Expected DEBUG log level, got %s", Global.LogLevel)
	}
	if Global.QueueSize != 64 {
		t.Errorf("Expected queue size 64, got %d", Global.QueueSize)
	}
}

// TestInitializeConfigInvalidQueueEnv tests that a bad override is ignored
func TestInitializeConfigInvalidQueueEnv(t *testing.T) {
	resetGlobal(t)
	t.Setenv("DEBUG", "")
	t.Setenv("QUEUE_SIZE", "many")

	InitializeConfig()

	if Global.QueueSize != configDefaults.DefaultQueueSize {
		t.Errorf("Expected queue size to stay %d, got %d", configDefaults.DefaultQueueSize, Global.QueueSize)
	}
}
