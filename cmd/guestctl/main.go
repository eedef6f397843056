// Package main provides the entry point for guestctl, the batch transaction
// CLI for the on-chain guestbook.
//
// INITIALIZATION FLOW:
// 1. Command structure setup
// 2. Global and per-command flags bound to the config package
// 3. Validation hooks (global on the root, per-command on run and pay)
// 4. Handler assignment linking commands to their RunE functions
//
// guestctl exits with status 1 when a command fails, which includes a batch
// where any operation failed or that was interrupted.
package main

import (
	"os"

	"github.com/concave-dev/guestbook/cmd/guestctl/commands"
	"github.com/concave-dev/guestbook/cmd/guestctl/config"
	"github.com/concave-dev/guestbook/cmd/guestctl/handlers"
	internalconfig "github.com/concave-dev/guestbook/internal/config"
)

func init() {
	rootCmd := commands.RootCmd

	// Set version and validation
	rootCmd.Version = config.Version
	rootCmd.PersistentPreRunE = config.ValidateGlobalFlags

	commands.SetupCommands()

	commands.SetupGlobalFlags(rootCmd, &config.Global.RPCURL, &config.Global.GuestbookAddress,
		&config.Global.PaymentsAddress, &config.Global.APIAddr, &config.Global.EnvFile,
		&config.Global.LogLevel, &config.Global.Timeout, &config.Global.Verbose, &config.Global.Output,
		internalconfig.DefaultRPCURL, internalconfig.DefaultGuestbookAddress)

	// Setup run command flags
	runCmd := commands.GetRunCommand()
	commands.SetupRunFlags(runCmd, &config.Run.Operation, &config.Run.Messages, &config.Run.Todos,
		&config.Run.DelayMs, &config.Run.Name, &config.Run.Message, &config.Run.Title,
		&config.Run.Description, &config.Run.TodoFee, &config.Run.MaxAttempts,
		&config.Run.RetryInterval, &config.Run.File, &config.Run.BatchName, &config.Run.Wait,
		config.DefaultOperation, config.DefaultMessages, config.DefaultTodos, config.DefaultDelayMs,
		internalconfig.DefaultTodoFee, internalconfig.DefaultMaxAttempts, internalconfig.DefaultRetryInterval)
	runCmd.PreRunE = config.ValidateRunFlags

	// Setup pay command flags
	payCmd := commands.GetPayCommand()
	commands.SetupPayFlags(payCmd, &config.Pay.Count, &config.Pay.Recipients, &config.Pay.Amount,
		&config.Pay.DelayMs, &config.Pay.MaxAttempts, &config.Pay.RetryInterval,
		config.DefaultPayments, internalconfig.DefaultPaymentAmount, config.DefaultDelayMs,
		internalconfig.DefaultMaxAttempts, internalconfig.DefaultRetryInterval)
	payCmd.PreRunE = config.ValidatePayFlags

	// Setup read and batch flags
	_, readCmd := commands.GetContractCommands()
	commands.SetupReadFlags(readCmd, &config.Read.Last, config.DefaultReadLast)
	batchLsCmd, _ := commands.GetBatchCommands()
	commands.SetupBatchFlags(batchLsCmd, &config.Batch.Limit, config.DefaultListLimit)

	setupCommandHandlers()
}

// setupCommandHandlers assigns RunE functions to commands
func setupCommandHandlers() {
	statsCmd, readCmd := commands.GetContractCommands()
	batchLsCmd, batchInfoCmd := commands.GetBatchCommands()

	commands.GetRunCommand().RunE = handlers.HandleRun
	commands.GetPayCommand().RunE = handlers.HandlePay
	statsCmd.RunE = handlers.HandleStats
	readCmd.RunE = handlers.HandleRead
	batchLsCmd.RunE = handlers.HandleBatchList
	batchInfoCmd.RunE = handlers.HandleBatchInfo
	commands.GetInfoCommand().RunE = handlers.HandleInfo
}

// main is the main entry point
func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
