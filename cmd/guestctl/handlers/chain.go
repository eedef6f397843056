package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/concave-dev/guestbook/cmd/guestctl/client"
	"github.com/concave-dev/guestbook/cmd/guestctl/config"
	"github.com/concave-dev/guestbook/cmd/guestctl/display"
	"github.com/concave-dev/guestbook/internal/batching"
	"github.com/concave-dev/guestbook/internal/chain"
	internalconfig "github.com/concave-dev/guestbook/internal/config"
	"github.com/concave-dev/guestbook/internal/history"
	"github.com/concave-dev/guestbook/internal/logging"
	"github.com/concave-dev/guestbook/internal/plan"
)

// remote reports whether commands should go through guestbookd
func remote() bool {
	return config.Global.APIAddr != ""
}

// chainConfig builds the chain client config from global flags
func chainConfig(privateKey string) *chain.Config {
	cfg := chain.DefaultConfig()
	cfg.RPCURL = config.Global.RPCURL
	cfg.GuestbookAddress = config.Global.GuestbookAddress
	cfg.PaymentsAddress = config.Global.PaymentsAddress
	cfg.PrivateKeyHex = privateKey
	cfg.ReceiptTimeout = internalconfig.DefaultReceiptTimeout
	return cfg
}

// dialChain connects to the RPC endpoint. With signer set the private key is
// required; otherwise it is used when present and the client is read-only
// without it.
func dialChain(signer bool) (*chain.Client, error) {
	key, err := internalconfig.PrivateKey(config.Global.EnvFile)
	if err != nil {
		if signer {
			return nil, err
		}
		logging.Debug("No signer key available, connecting read-only")
		key = ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.Global.Timeout)*time.Second)
	defer cancel()

	logging.Info("Connecting to %s", config.Global.RPCURL)
	return chain.Dial(ctx, chainConfig(key))
}

// executeBatch runs groups locally or on the daemon and prints the report.
// The returned error is non-nil when the batch did not fully succeed.
func executeBatch(groups [][]batching.Operation, cfg *batching.Config, name string, wait bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if remote() {
		return executeRemote(ctx, groups, cfg, name, wait)
	}
	return executeLocal(ctx, groups, cfg)
}

func executeLocal(ctx context.Context, groups [][]batching.Operation, cfg *batching.Config) error {
	chainClient, err := dialChain(true)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	total := countOperations(groups)
	var opts []batching.Option
	if config.Global.Output != "json" {
		opts = append(opts, batching.WithObserver(display.NewProgress(total)))
	}

	engine, err := batching.NewEngine(chainClient, cfg, opts...)
	if err != nil {
		return err
	}

	display.DisplayPlanned(groups, cfg.PacingDelay, logging.FormatAddress(chainClient.Sender().Hex()))

	start := time.Now()
	report, err := engine.SubmitGroups(ctx, groups)
	if report == nil {
		return err
	}

	if config.Global.Output != "json" {
		fmt.Fprintln(display.Output)
	}
	display.DisplayReport(report, time.Since(start))
	return batchResult(report)
}

func executeRemote(ctx context.Context, groups [][]batching.Operation, cfg *batching.Config, name string, wait bool) error {
	apiClient := client.CreateAPIClient()

	resp, err := apiClient.SubmitBatch(ToBatchRequest(groups, cfg, name))
	if err != nil {
		return err
	}
	logging.Success("Batch %s queued on %s", logging.FormatBatchID(resp.BatchID), config.Global.APIAddr)

	if !wait {
		display.DisplaySubmitted(resp)
		return nil
	}

	if config.Global.Output != "json" {
		display.DisplayPlanned(groups, cfg.PacingDelay, "guestbookd batch "+resp.BatchID)
	}

	rec, err := apiClient.WaitForBatch(ctx, resp.BatchID, func(r *history.Record) {
		logging.Debug("Batch %s is %s", logging.FormatBatchID(r.ID), r.Status)
	})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("stopped waiting; batch %s keeps running on the daemon", resp.BatchID)
		}
		return err
	}

	display.DisplayBatch(rec)
	if rec.Report == nil {
		return fmt.Errorf("batch %s %s: %s", rec.ID, rec.Status, rec.Error)
	}
	return batchResult(rec.Report)
}

// ToBatchRequest serializes groups for the daemon API.
func ToBatchRequest(groups [][]batching.Operation, cfg *batching.Config, name string) *client.BatchRequest {
	pacing := cfg.PacingDelay.Milliseconds()
	attempts := cfg.MaxAttempts
	retry := cfg.RetryInterval.Milliseconds()

	req := &client.BatchRequest{
		Name:            name,
		PacingMs:        &pacing,
		MaxAttempts:     &attempts,
		RetryIntervalMs: &retry,
		Groups:          make([]plan.Group, 0, len(groups)),
	}
	for _, ops := range groups {
		g := plan.Group{Operations: make([]plan.OperationSpec, 0, len(ops))}
		for _, op := range ops {
			g.Operations = append(g.Operations, plan.FromOperation(op))
		}
		req.Groups = append(req.Groups, g)
	}
	return req
}

// batchResult turns a report into the command's exit status
func batchResult(report *batching.Report) error {
	if report.Interrupted {
		return fmt.Errorf("batch interrupted after %d of %d operations", report.Total, report.Requested)
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d operations failed", report.Failed, report.Total)
	}
	return nil
}

func countOperations(groups [][]batching.Operation) int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}
