package batching

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const testRecipient = "0x086f4eC31A85a4E96d30A99bD80018E9d91e4d42"

// fakeSubmitter is a scripted test double. The behavior function decides the
// result for every attempt; calls are recorded with their start time.
type fakeSubmitter struct {
	mu       sync.Mutex
	behavior func(a Attempt) (Receipt, error)
	calls    []Attempt
	started  []time.Time
}

func (f *fakeSubmitter) Submit(ctx context.Context, a Attempt) (Receipt, error) {
	f.mu.Lock()
	f.calls = append(f.calls, a)
	f.started = append(f.started, time.Now())
	f.mu.Unlock()
	return f.behavior(a)
}

func (f *fakeSubmitter) attemptsFor(seq int) int {
	n := 0
	for _, c := range f.calls {
		if c.Sequence == seq {
			n++
		}
	}
	return n
}

func alwaysSucceed(a Attempt) (Receipt, error) {
	return Receipt{
		TxHash:      fmt.Sprintf("0xhash-%d-%d", a.Sequence, a.Number),
		BlockNumber: uint64(100 + a.Sequence),
		GasUsed:     uint64(21000 * a.Sequence),
	}, nil
}

func messages(n int) []Operation {
	ops := make([]Operation, n)
	for i := range ops {
		ops[i] = NewPostMessage(fmt.Sprintf("Alice #%d", i+1), "hello", 200000)
	}
	return ops
}

// fastConfig keeps tests quick while exercising the retry path.
func fastConfig(attempts int) *Config {
	return &Config{PacingDelay: 0, MaxAttempts: attempts, RetryInterval: time.Millisecond}
}

func newTestEngine(t *testing.T, s Submitter, cfg *Config, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(s, cfg, opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

// TestCountInvariantAndOrdering tests succeeded+failed == total == len(ops)
// and that outcomes follow input order
func TestCountInvariantAndOrdering(t *testing.T) {
	for _, n := range []int{1, 2, 5, 9} {
		t.Run(fmt.Sprintf("%d ops", n), func(t *testing.T) {
			// every third operation fails permanently
			fake := &fakeSubmitter{behavior: func(a Attempt) (Receipt, error) {
				if a.Sequence%3 == 0 {
					return Receipt{}, Permanent(errors.New("execution reverted"))
				}
				return alwaysSucceed(a)
			}}
			e := newTestEngine(t, fake, fastConfig(3))

			report, err := e.SubmitBatch(context.Background(), messages(n))
			if err != nil {
				t.Fatalf("SubmitBatch() error = %v", err)
			}

			if report.Succeeded+report.Failed != report.Total || report.Total != n || len(report.Outcomes) != n {
				t.Errorf("Expected %d total, got total=%d succeeded=%d failed=%d outcomes=%d",
					n, report.Total, report.Succeeded, report.Failed, len(report.Outcomes))
			}
			for i, o := range report.Outcomes {
				if o.Sequence != i+1 {
					t.Errorf("Expected outcome %d to have sequence %d, got %d", i, i+1, o.Sequence)
				}
			}
			if report.Interrupted {
				t.Error("Expected completed run not to be interrupted")
			}
		})
	}
}

// TestTransientExhaustsAttempts tests that persistent transient failures
// make exactly MaxAttempts attempts before failing
func TestTransientExhaustsAttempts(t *testing.T) {
	for _, attempts := range []int{1, 3, 5} {
		t.Run(fmt.Sprintf("max %d", attempts), func(t *testing.T) {
			fake := &fakeSubmitter{behavior: func(a Attempt) (Receipt, error) {
				return Receipt{}, Transient(fmt.Errorf("timeout on attempt %d", a.Number))
			}}
			e := newTestEngine(t, fake, fastConfig(attempts))

			report, err := e.SubmitBatch(context.Background(), messages(1))
			if err != nil {
				t.Fatalf("SubmitBatch() error = %v", err)
			}

			if got := fake.attemptsFor(1); got != attempts {
				t.Errorf("Expected %d attempts, got %d", attempts, got)
			}
			o := report.Outcomes[0]
			if o.Success || o.Attempts != attempts {
				t.Errorf("Expected failed outcome after %d attempts, got %+v", attempts, o)
			}
			want := fmt.Sprintf("timeout on attempt %d", attempts)
			if o.FailureReason != want {
				t.Errorf("Expected last failure %q, got %q", want, o.FailureReason)
			}
		})
	}
}

// TestSuccessOnNthAttempt tests that the receipt of the succeeding attempt
// is the one recorded
func TestSuccessOnNthAttempt(t *testing.T) {
	fake := &fakeSubmitter{behavior: func(a Attempt) (Receipt, error) {
		if a.Number < 3 {
			return Receipt{}, Transient(errors.New("nonce too low"))
		}
		return alwaysSucceed(a)
	}}
	e := newTestEngine(t, fake, fastConfig(4))

	report, err := e.SubmitBatch(context.Background(), messages(1))
	if err != nil {
		t.Fatalf("SubmitBatch() error = %v", err)
	}

	want := Outcome{
		Sequence:    1,
		Kind:        KindPostMessage,
		Label:       "Alice #1",
		Success:     true,
		TxHash:      "0xhash-1-3",
		BlockNumber: 101,
		GasUsed:     21000,
		Attempts:    3,
	}
	if diff := cmp.Diff(want, report.Outcomes[0], cmp.Comparer(bigEqual)); diff != "" {
		t.Errorf("Outcome mismatch (-want +got):\n%s", diff)
	}
}

// TestPermanentNotRetried tests that permanent and unclassified errors are
// recorded after a single attempt
func TestPermanentNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"permanent", Permanent(errors.New("insufficient funds"))},
		{"unclassified", errors.New("something odd")},
		{"wrapped permanent", fmt.Errorf("send: %w", Permanent(errors.New("invalid argument")))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSubmitter{behavior: func(a Attempt) (Receipt, error) { return Receipt{}, tt.err }}
			e := newTestEngine(t, fake, fastConfig(3))

			report, err := e.SubmitBatch(context.Background(), messages(2))
			if err != nil {
				t.Fatalf("SubmitBatch() error = %v", err)
			}
			if len(fake.calls) != 2 {
				t.Errorf("Expected one attempt per operation, got %d calls", len(fake.calls))
			}
			if report.Failed != 2 || report.Outcomes[0].FailureReason != tt.err.Error() {
				t.Errorf("Expected 2 failures with reason %q, got %+v", tt.err.Error(), report)
			}
		})
	}
}

// TestGasSumsSuccessesOnly tests that failed outcomes contribute no gas
func TestGasSumsSuccessesOnly(t *testing.T) {
	fake := &fakeSubmitter{behavior: func(a Attempt) (Receipt, error) {
		if a.Sequence == 2 {
			return Receipt{GasUsed: 999999}, Permanent(errors.New("reverted"))
		}
		return alwaysSucceed(a)
	}}
	e := newTestEngine(t, fake, fastConfig(1))

	report, err := e.SubmitBatch(context.Background(), messages(3))
	if err != nil {
		t.Fatalf("SubmitBatch() error = %v", err)
	}

	// sequences 1 and 3 succeed: 21000 + 63000
	if report.TotalGasUsed != 84000 {
		t.Errorf("Expected 84000 gas, got %d", report.TotalGasUsed)
	}
	if report.Outcomes[1].GasUsed != 0 {
		t.Errorf("Expected failed outcome to carry no gas, got %d", report.Outcomes[1].GasUsed)
	}
}

// TestMixedKindComposite tests the two messages then one todo scenario with
// the second message failing permanently
func TestMixedKindComposite(t *testing.T) {
	fee := big.NewInt(10_000_000_000_000)
	groups := [][]Operation{
		messages(2),
		{NewCreateTodo("Buy milk", "2 liters", fee, 300000)},
	}

	fake := &fakeSubmitter{behavior: func(a Attempt) (Receipt, error) {
		if a.Sequence == 2 {
			return Receipt{}, Permanent(errors.New("execution reverted"))
		}
		return alwaysSucceed(a)
	}}
	e := newTestEngine(t, fake, fastConfig(3))

	report, err := e.SubmitGroups(context.Background(), groups)
	if err != nil {
		t.Fatalf("SubmitGroups() error = %v", err)
	}

	if report.Total != 3 || report.Succeeded != 2 || report.Failed != 1 {
		t.Errorf("Expected total=3 succeeded=2 failed=1, got %d/%d/%d",
			report.Total, report.Succeeded, report.Failed)
	}
	wantKinds := map[Kind]int{KindPostMessage: 1, KindCreateTodo: 1}
	if diff := cmp.Diff(wantKinds, report.ByKind); diff != "" {
		t.Errorf("ByKind mismatch (-want +got):\n%s", diff)
	}
	if report.TotalValueSpent.Cmp(fee) != 0 {
		t.Errorf("Expected value spent %s, got %s", fee, report.TotalValueSpent)
	}

	gotKinds := []Kind{}
	for _, o := range report.Outcomes {
		gotKinds = append(gotKinds, o.Kind)
	}
	if diff := cmp.Diff([]Kind{KindPostMessage, KindPostMessage, KindCreateTodo}, gotKinds); diff != "" {
		t.Errorf("Group order mismatch (-want +got):\n%s", diff)
	}
	if report.Outcomes[2].Sequence != 3 {
		t.Errorf("Expected continuous numbering across groups, got %d", report.Outcomes[2].Sequence)
	}
}

// TestPaymentValueAccounting tests that failed payments are not counted as spent
func TestPaymentValueAccounting(t *testing.T) {
	amount := big.NewInt(1696137472)
	ops := []Operation{
		NewSendPayment(testRecipient, amount, "gm", 100000),
		NewSendPayment(testRecipient, amount, "gn", 100000),
	}
	fake := &fakeSubmitter{behavior: func(a Attempt) (Receipt, error) {
		if a.Sequence == 2 {
			return Receipt{}, Permanent(errors.New("insufficient funds"))
		}
		return alwaysSucceed(a)
	}}
	e := newTestEngine(t, fake, fastConfig(1))

	report, err := e.SubmitBatch(context.Background(), ops)
	if err != nil {
		t.Fatalf("SubmitBatch() error = %v", err)
	}
	if report.TotalValueSpent.Cmp(amount) != 0 {
		t.Errorf("Expected %s spent, got %s", amount, report.TotalValueSpent)
	}
	if report.ByKind[KindSendPayment] != 1 {
		t.Errorf("Expected 1 successful payment, got %d", report.ByKind[KindSendPayment])
	}
}

// TestPacingLowerBound tests that no operation starts before the pacing
// delay has elapsed since the previous outcome
func TestPacingLowerBound(t *testing.T) {
	const pacing = 100 * time.Millisecond

	var recorded []time.Time
	fake := &fakeSubmitter{behavior: alwaysSucceed}
	obs := observerFunc{outcome: func(Outcome) { recorded = append(recorded, time.Now()) }}

	e := newTestEngine(t, fake, &Config{PacingDelay: pacing, MaxAttempts: 3, RetryInterval: 0}, WithObserver(obs))

	if _, err := e.SubmitBatch(context.Background(), messages(3)); err != nil {
		t.Fatalf("SubmitBatch() error = %v", err)
	}

	for i := 1; i < len(fake.started); i++ {
		gap := fake.started[i].Sub(recorded[i-1])
		if gap < pacing {
			t.Errorf("Operation %d started %v after previous outcome, want >= %v", i+1, gap, pacing)
		}
	}
}

// TestConfigurationErrors tests that invalid batches fail before any submission
func TestConfigurationErrors(t *testing.T) {
	fake := &fakeSubmitter{behavior: alwaysSucceed}

	tests := []struct {
		name    string
		ops     []Operation
		pacing  time.Duration
		retries int
		sub     Submitter
	}{
		{"empty batch", nil, 0, 3, fake},
		{"negative pacing", messages(1), -time.Millisecond, 3, fake},
		{"zero attempts", messages(1), 0, 0, fake},
		{"nil submitter", messages(1), 0, 3, nil},
		{"missing name", []Operation{NewPostMessage("", "body", 200000)}, 0, 3, fake},
		{"zero gas", []Operation{NewPostMessage("a", "b", 0)}, 0, 3, fake},
		{"bad recipient", []Operation{NewSendPayment("0x123", big.NewInt(1), "", 100000)}, 0, 3, fake},
		{"negative value", []Operation{NewCreateTodo("t", "d", big.NewInt(-1), 300000)}, 0, 3, fake},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := SubmitBatch(context.Background(), tt.ops, tt.pacing, tt.retries, tt.sub)
			if !IsConfigurationError(err) {
				t.Fatalf("Expected ConfigurationError, got %v", err)
			}
			if report != nil {
				t.Errorf("Expected no report, got %+v", report)
			}
		})
	}

	if len(fake.calls) != 0 {
		t.Errorf("Expected no submissions, got %d", len(fake.calls))
	}
}

// TestInvalidOperationsAggregated tests that every invalid operation is reported
func TestInvalidOperationsAggregated(t *testing.T) {
	fake := &fakeSubmitter{behavior: alwaysSucceed}
	e := newTestEngine(t, fake, fastConfig(1))

	ops := []Operation{
		NewPostMessage("", "b", 200000),
		NewPostMessage("ok", "ok", 200000),
		NewCreateTodo("", "", nil, 300000),
	}
	_, err := e.SubmitBatch(context.Background(), ops)

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"operation 1", "operation 3"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected %q in %q", want, msg)
		}
	}
}

// TestCancellationReturnsPartialReport tests that cancelling mid-batch keeps
// attempted outcomes and drops the rest
func TestCancellationReturnsPartialReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeSubmitter{behavior: func(a Attempt) (Receipt, error) {
		if a.Sequence == 2 {
			cancel()
		}
		return alwaysSucceed(a)
	}}
	e := newTestEngine(t, fake, &Config{PacingDelay: time.Second, MaxAttempts: 3, RetryInterval: time.Second})

	report, err := e.SubmitBatch(ctx, messages(5))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if report == nil || !report.Interrupted {
		t.Fatalf("Expected interrupted partial report, got %+v", report)
	}
	if report.Total != 2 || report.Requested != 5 || report.Succeeded != 2 {
		t.Errorf("Expected 2 of 5 attempted and succeeded, got total=%d requested=%d succeeded=%d",
			report.Total, report.Requested, report.Succeeded)
	}
}

// TestCancellationDuringRetryWait tests that a retry wait is cut short and the
// operation is recorded as failed
func TestCancellationDuringRetryWait(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	fake := &fakeSubmitter{behavior: func(a Attempt) (Receipt, error) {
		return Receipt{}, Transient(errors.New("rpc timeout"))
	}}
	e := newTestEngine(t, fake, &Config{PacingDelay: 0, MaxAttempts: 3, RetryInterval: time.Hour})

	start := time.Now()
	report, err := e.SubmitBatch(ctx, messages(2))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Expected retry wait to be interrupted")
	}
	if report.Total != 1 || report.Failed != 1 || report.Outcomes[0].FailureReason != "rpc timeout" {
		t.Errorf("Expected one failed outcome, got %+v", report)
	}
}

// TestRetryIntervalSchedule tests the fixed wait between attempts, including
// a zero interval
func TestRetryIntervalSchedule(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		minTotal time.Duration
	}{
		{"zero interval", 0, 0},
		{"constant interval", 20 * time.Millisecond, 40 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stamps []time.Time
			fake := &fakeSubmitter{behavior: func(a Attempt) (Receipt, error) {
				stamps = append(stamps, time.Now())
				return Receipt{}, Transient(errors.New("busy"))
			}}
			e := newTestEngine(t, fake, &Config{PacingDelay: 0, MaxAttempts: 3, RetryInterval: tt.interval})

			report, err := e.SubmitBatch(context.Background(), messages(1))
			if err != nil {
				t.Fatalf("SubmitBatch() error = %v", err)
			}
			if len(stamps) != 3 || report.Outcomes[0].Attempts != 3 {
				t.Fatalf("Expected 3 attempts, got %d calls and outcome %+v", len(stamps), report.Outcomes[0])
			}
			for i := 1; i < len(stamps); i++ {
				if gap := stamps[i].Sub(stamps[i-1]); gap < tt.interval {
					t.Errorf("Expected at least %v between attempts %d and %d, got %v", tt.interval, i, i+1, gap)
				}
			}
			if got := stamps[2].Sub(stamps[0]); got < tt.minTotal {
				t.Errorf("Expected attempts to span at least %v, got %v", tt.minTotal, got)
			}
		})
	}
}

// TestObserverEvents tests attempt and outcome notifications
func TestObserverEvents(t *testing.T) {
	var retries, finals, outcomes int
	obs := observerFunc{
		attempt: func(a Attempt, err error, willRetry bool) {
			if willRetry {
				retries++
			} else {
				finals++
			}
		},
		outcome: func(Outcome) { outcomes++ },
	}
	fake := &fakeSubmitter{behavior: func(a Attempt) (Receipt, error) {
		return Receipt{}, Transient(errors.New("busy"))
	}}
	e := newTestEngine(t, fake, fastConfig(3), WithObserver(obs))

	if _, err := e.SubmitBatch(context.Background(), messages(2)); err != nil {
		t.Fatalf("SubmitBatch() error = %v", err)
	}
	if retries != 4 || finals != 2 || outcomes != 2 {
		t.Errorf("Expected 4 retries, 2 final failures, 2 outcomes; got %d, %d, %d", retries, finals, outcomes)
	}
}

type observerFunc struct {
	attempt func(Attempt, error, bool)
	outcome func(Outcome)
}

func (o observerFunc) AttemptFailed(a Attempt, err error, willRetry bool) {
	if o.attempt != nil {
		o.attempt(a, err, willRetry)
	}
}

func (o observerFunc) OutcomeRecorded(out Outcome) {
	if o.outcome != nil {
		o.outcome(out)
	}
}
