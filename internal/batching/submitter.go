package batching

import (
	"context"
)

// Attempt identifies one submission attempt. Sequence is stable across
// retries of the same operation and Number starts at 1, which lets a
// submitter recognize a retry and reuse an already broadcast transaction.
type Attempt struct {
	Sequence  int
	Number    int
	Operation Operation
}

// Receipt is what a successful write returns.
type Receipt struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
}

// Submitter performs exactly one remote write attempt per call.
//
// Failures should be classified as *TransientError or *PermanentError. The
// engine treats any other error as permanent. Implementations must serialize
// access to the sender account across concurrent batches and must make
// retries safe against double application.
type Submitter interface {
	Submit(ctx context.Context, attempt Attempt) (Receipt, error)
}

// SubmitFunc adapts a function to the Submitter interface.
type SubmitFunc func(ctx context.Context, attempt Attempt) (Receipt, error)

// Submit calls f.
func (f SubmitFunc) Submit(ctx context.Context, attempt Attempt) (Receipt, error) {
	return f(ctx, attempt)
}

// Observer receives engine events as they happen. Calls are made from the
// goroutine running the batch and must not block.
type Observer interface {
	AttemptFailed(attempt Attempt, err error, willRetry bool)
	OutcomeRecorded(outcome Outcome)
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers an observer. Multiple observers are called in
// registration order.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}
