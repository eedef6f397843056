// Package daemon wires and runs guestbookd.
//
// STARTUP ORDER:
//  1. Bind the API port so a busy port fails before anything else starts
//  2. Load the signer key and dial the chain
//  3. Open the batch history and build metrics
//  4. Start the dispatcher, then serve the API
//
// SHUTDOWN ORDER:
// On SIGINT or SIGTERM the API stops accepting requests first, then the
// dispatcher cancels the running batch and marks queued ones interrupted,
// then history and the RPC connection are closed. Every batch therefore
// ends with a stored terminal record.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	gethlog "github.com/ethereum/go-ethereum/log"

	"github.com/concave-dev/guestbook/cmd/guestbookd/config"
	"github.com/concave-dev/guestbook/internal/api"
	"github.com/concave-dev/guestbook/internal/api/dispatch"
	"github.com/concave-dev/guestbook/internal/api/handlers"
	"github.com/concave-dev/guestbook/internal/chain"
	internalconfig "github.com/concave-dev/guestbook/internal/config"
	"github.com/concave-dev/guestbook/internal/history"
	"github.com/concave-dev/guestbook/internal/logging"
	"github.com/concave-dev/guestbook/internal/metrics"
	"github.com/concave-dev/guestbook/internal/netutil"
)

// buildChainConfig converts daemon config to the chain client config
func buildChainConfig(privateKey string) *chain.Config {
	cfg := chain.DefaultConfig()
	cfg.RPCURL = config.Global.RPCURL
	cfg.GuestbookAddress = config.Global.GuestbookAddress
	cfg.PaymentsAddress = config.Global.PaymentsAddress
	cfg.PrivateKeyHex = privateKey
	cfg.ChainID = config.Global.ChainID
	cfg.ReceiptTimeout = config.Global.ReceiptTimeout
	return cfg
}

// buildAPIConfig converts daemon config and services to the API server config
func buildAPIConfig(d *dispatch.Dispatcher, store *history.Store, chainClient *chain.Client, m *metrics.Metrics) *api.Config {
	apiConfig := api.DefaultConfig()
	apiConfig.BindAddr = config.Global.APIAddr
	apiConfig.BindPort = config.Global.APIPort
	apiConfig.Dispatcher = d
	apiConfig.History = store
	apiConfig.Chain = chainClient
	apiConfig.Metrics = m
	apiConfig.Node = handlers.NodeInfo{
		Sender:  chainClient.Sender().Hex(),
		ChainID: chainClient.ChainID().String(),
	}
	return apiConfig
}

// gethLevel maps our log level to go-ethereum's
func gethLevel(level string) slog.Level {
	switch level {
	case "DEBUG":
		return gethlog.LevelDebug
	case "INFO":
		return gethlog.LevelInfo
	case "WARN":
		return gethlog.LevelWarn
	default:
		return gethlog.LevelError
	}
}

// openHistory opens the batch store on disk or in memory
func openHistory() (*history.Store, error) {
	if config.Global.InMemory {
		logging.Warn("Batch history is in memory and will be lost on shutdown")
		return history.OpenInMemory()
	}
	if err := os.MkdirAll(config.Global.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", config.Global.DataDir, err)
	}
	return history.Open(config.Global.DataDir)
}

// Run starts guestbookd and blocks until a shutdown signal arrives.
func Run() error {
	logging.Info("Starting guestbook daemon")

	// Route go-ethereum's own logs through ours
	chainLogs := logging.NewChainLogWriter()
	defer chainLogs.Close()
	gethlog.SetDefault(gethlog.NewLogger(gethlog.NewTerminalHandlerWithLevel(chainLogs, gethLevel(config.Global.LogLevel), false)))
	logging.RedirectStandardLog(logging.NewLevelWriter("WARN", "stdlog"))
	defer logging.RedirectStandardLog(os.Stderr)

	listener, err := netutil.ListenTCP(config.Global.APIAddr, config.Global.APIPort)
	if err != nil {
		if netutil.IsAddressInUseError(err) {
			logging.Error("TIP: Another process (maybe another guestbookd) holds port %d; pick one with --api", config.Global.APIPort)
		}
		return fmt.Errorf("failed to bind API address: %w", err)
	}
	defer listener.Close()

	privateKey, err := internalconfig.PrivateKey(config.Global.EnvFile)
	if err != nil {
		return err
	}

	dialCtx, cancelDial := context.WithTimeout(context.Background(), 30*time.Second)
	chainClient, err := chain.Dial(dialCtx, buildChainConfig(privateKey))
	cancelDial()
	if err != nil {
		if hint := netutil.DialHint(err, "the RPC endpoint "+config.Global.RPCURL); hint != "" {
			logging.Error("%s", hint)
		}
		return fmt.Errorf("failed to connect to chain: %w", err)
	}
	defer chainClient.Close()

	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open batch history: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("Error closing batch history: %v", err)
		}
	}()

	m := metrics.New()

	dispatcher, err := dispatch.NewDispatcher(chainClient, store,
		&dispatch.Config{QueueSize: config.Global.QueueSize},
		dispatch.WithObserver(m),
		dispatch.WithRecorder(m),
	)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	dispatcher.Start()

	apiConfig := buildAPIConfig(dispatcher, store, chainClient, m)
	if err := apiConfig.Validate(); err != nil {
		dispatcher.Stop()
		return fmt.Errorf("invalid API config: %w", err)
	}
	apiServer := api.NewServer(apiConfig)
	apiServer.Serve(listener)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	logging.Success("Guestbook daemon started successfully")
	logging.Info("Daemon services:")
	logging.Info("  - HTTP API: %s:%d", config.Global.APIAddr, config.Global.APIPort)
	logging.Info("  - Chain %s via %s", chainClient.ChainID(), config.Global.RPCURL)
	logging.Info("  - Signer: %s", chainClient.Sender().Hex())
	if config.Global.InMemory {
		logging.Info("  - Batch history: in memory")
	} else {
		logging.Info("  - Batch history: %s", config.Global.DataDir)
	}
	logging.Info("Daemon running... Press Ctrl+C to shutdown")

	sig := <-sigCh
	logging.Info("Received signal: %v", sig)
	logging.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("Error shutting down API server: %v", err)
	}

	dispatcher.Stop()

	logging.Success("Guestbook daemon shutdown completed")
	return nil
}
