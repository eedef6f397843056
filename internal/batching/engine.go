// Package batching implements the batch submission engine that drives a list
// of guestbook operations through a chain submitter one at a time and folds
// the results into a report.
//
// EXECUTION MODEL:
// Operations run strictly sequentially. Each write depends on the sender's
// account nonce advancing, so two in-flight writes from the same account
// would race. The engine never submits concurrently and never reorders.
//
// RETRY POLICY:
//   - TransientError: wait RetryInterval and try again, up to MaxAttempts total
//   - PermanentError: record the failure immediately and move on
//   - Unclassified errors: handled as permanent
//
// A failed operation never aborts the batch. Only a ConfigurationError, raised
// before the first submission, or context cancellation ends a run early.
//
// CANCELLATION:
// The context is honored while a submission is in flight, during the retry
// wait and during pacing. On cancellation the engine stops scheduling work
// and returns the report for the operations it attempted together with the
// context error.
package batching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sethvargo/go-retry"

	"github.com/concave-dev/guestbook/internal/logging"
)

// Engine runs batches through a Submitter under a fixed retry and pacing
// policy. An Engine holds no state between runs; callers that share a sender
// account across engines must serialize runs themselves.
type Engine struct {
	submitter Submitter
	config    Config
	observers []Observer
}

// NewEngine validates the policy and returns an engine. A nil config selects
// DefaultConfig.
func NewEngine(submitter Submitter, cfg *Config, opts ...Option) (*Engine, error) {
	if submitter == nil {
		return nil, configErrorf("submitter is nil")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		submitter: submitter,
		config:    *cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// SubmitBatch runs operations with the given pacing delay and attempt limit
// using a one-off engine. The retry interval is the default.
func SubmitBatch(ctx context.Context, ops []Operation, pacingDelay time.Duration, maxAttempts int, submitter Submitter) (*Report, error) {
	cfg := DefaultConfig()
	cfg.PacingDelay = pacingDelay
	cfg.MaxAttempts = maxAttempts

	engine, err := NewEngine(submitter, cfg)
	if err != nil {
		return nil, err
	}
	return engine.SubmitBatch(ctx, ops)
}

// Config returns a copy of the engine's policy.
func (e *Engine) Config() Config {
	return e.config
}

// SubmitBatch runs ops in order and returns the report.
func (e *Engine) SubmitBatch(ctx context.Context, ops []Operation) (*Report, error) {
	return e.SubmitGroups(ctx, [][]Operation{ops})
}

// SubmitGroups runs a composite batch. Each group runs to completion before
// the next one starts and sequence numbers continue across groups, so the
// result is one report as if the groups had been concatenated.
func (e *Engine) SubmitGroups(ctx context.Context, groups [][]Operation) (*Report, error) {
	total, err := checkGroups(groups)
	if err != nil {
		return nil, err
	}

	logging.Info("Engine: Starting batch of %d operations in %d group(s) (%s)",
		total, len(groups), e.config.String())

	outcomes := make([]Outcome, 0, total)
	seq := 0

	for _, group := range groups {
		for _, op := range group {
			seq++

			pacing := e.config.PacingDelay
			if seq == 1 {
				pacing = 0
			}
			if err := sleepCtx(ctx, pacing); err != nil {
				logging.Warn("Engine: Batch cancelled before operation %d: %v", seq, err)
				return e.partial(outcomes, total), err
			}

			outcome, err := e.runOperation(ctx, seq, total, op)
			outcomes = append(outcomes, outcome)
			e.notifyOutcome(outcome)

			if err != nil {
				logging.Warn("Engine: Batch cancelled at operation %d/%d: %v", seq, total, err)
				return e.partial(outcomes, total), err
			}
		}
	}

	report := ComputeReport(outcomes)
	logging.Info("Engine: Batch finished: %d succeeded, %d failed, %d gas used",
		report.Succeeded, report.Failed, report.TotalGasUsed)
	return &report, nil
}

// runOperation makes up to MaxAttempts attempts for one operation. The
// returned error is non-nil only when ctx ended the attempt loop.
func (e *Engine) runOperation(ctx context.Context, seq, total int, op Operation) (Outcome, error) {
	outcome := Outcome{
		Sequence: seq,
		Kind:     op.Kind(),
		Label:    op.Label(),
		Value:    op.AttachedValue(),
	}

	var (
		lastErr   error
		cancelled bool
	)
	doErr := retry.Do(ctx, e.backoff(), func(ctx context.Context) error {
		n := outcome.Attempts + 1
		// The retry wait can end on its timer after ctx was cancelled
		if n > 1 && ctx.Err() != nil {
			return ctx.Err()
		}

		attempt := Attempt{Sequence: seq, Number: n, Operation: op}
		outcome.Attempts = n

		receipt, err := e.submitter.Submit(ctx, attempt)
		if err == nil {
			outcome.Success = true
			outcome.TxHash = receipt.TxHash
			outcome.BlockNumber = receipt.BlockNumber
			outcome.GasUsed = receipt.GasUsed
			logging.Success("Operation %d/%d (%s) confirmed in block %d: %s",
				seq, total, op.Kind(), receipt.BlockNumber, logging.FormatTxHash(receipt.TxHash))
			return nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			cancelled = true
			return ctxErr
		}

		willRetry := IsTransient(err) && n < e.config.MaxAttempts
		e.notifyAttemptFailed(attempt, err, willRetry)

		switch {
		case !IsTransient(err):
			logging.Error("Operation %d/%d (%s) failed permanently on attempt %d: %v",
				seq, total, op.Kind(), n, err)
			return err
		case !willRetry:
			logging.Error("Operation %d/%d (%s) failed after %d attempts: %v",
				seq, total, op.Kind(), n, err)
			return err
		}

		logging.Warn("Operation %d/%d (%s) attempt %d/%d failed: %v",
			seq, total, op.Kind(), n, e.config.MaxAttempts, err)
		return retry.RetryableError(err)
	})

	switch {
	case outcome.Success:
		return outcome, nil
	case cancelled:
		outcome.FailureReason = fmt.Sprintf("cancelled: %v", lastErr)
		return outcome, ctx.Err()
	case ctx.Err() != nil && errors.Is(doErr, ctx.Err()):
		// Cancelled while waiting to retry
		outcome.FailureReason = lastErr.Error()
		return outcome, ctx.Err()
	}

	outcome.FailureReason = lastErr.Error()
	return outcome, nil
}

// backoff returns a fresh retry schedule for one operation: a constant
// RetryInterval between attempts, MaxAttempts attempts in total.
func (e *Engine) backoff() retry.Backoff {
	var b retry.Backoff = retry.BackoffFunc(func() (time.Duration, bool) {
		return 0, false
	})
	if e.config.RetryInterval > 0 {
		constant, err := retry.NewConstant(e.config.RetryInterval)
		if err == nil {
			b = constant
		}
	}
	return retry.WithMaxRetries(uint64(e.config.MaxAttempts-1), b)
}

func (e *Engine) partial(outcomes []Outcome, requested int) *Report {
	report := ComputeReport(outcomes)
	report.Interrupted = true
	report.Requested = requested
	return &report
}

func (e *Engine) notifyAttemptFailed(attempt Attempt, err error, willRetry bool) {
	for _, o := range e.observers {
		o.AttemptFailed(attempt, err, willRetry)
	}
}

func (e *Engine) notifyOutcome(outcome Outcome) {
	for _, o := range e.observers {
		o.OutcomeRecorded(outcome)
	}
}

// checkGroups rejects empty batches and collects every invalid operation into
// one ConfigurationError.
func checkGroups(groups [][]Operation) (int, error) {
	total := 0
	var result *multierror.Error

	for gi, group := range groups {
		for oi, op := range group {
			total++
			if err := op.Validate(); err != nil {
				if len(groups) > 1 {
					result = multierror.Append(result, fmt.Errorf("group %d operation %d: %w", gi+1, oi+1, err))
				} else {
					result = multierror.Append(result, fmt.Errorf("operation %d: %w", oi+1, err))
				}
			}
		}
	}

	if total == 0 {
		return 0, configErrorf("batch contains no operations")
	}
	if err := result.ErrorOrNil(); err != nil {
		return 0, &ConfigurationError{Err: err}
	}
	return total, nil
}

// sleepCtx waits out the pacing delay d or until ctx is done. A zero duration
// still observes cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
