package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"

	"github.com/concave-dev/guestbook/internal/batching"
)

const (
	testGuestbook = "0x086f4eC31A85a4E96d30A99bD80018E9d91e4d42"
	testPayments  = "0x51F19F71e9d073AAB39f6fd003F424984390E5A0"
	testRecipient = "0xC9b1E7DBE24E29D1F9a917Ea24697C704ABBFeE0"
)

// simChain is an in-process chain with a funded signer.
type simChain struct {
	backend *simulated.Backend
	key     *ecdsa.PrivateKey
	stop    chan struct{}
}

func newSimChain(t *testing.T) *simChain {
	t.Helper()

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	funds := new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))
	backend := simulated.NewBackend(types.GenesisAlloc{
		crypto.PubkeyToAddress(key.PublicKey): {Balance: funds},
	})

	sc := &simChain{backend: backend, key: key, stop: make(chan struct{})}
	t.Cleanup(func() {
		sc.pause()
		backend.Close()
	})
	return sc
}

// mine commits a block every few milliseconds until paused.
func (sc *simChain) mine() {
	sc.stop = make(chan struct{})
	stop := sc.stop
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				sc.backend.Commit()
			}
		}
	}()
}

func (sc *simChain) pause() {
	select {
	case <-sc.stop:
	default:
		close(sc.stop)
	}
}

func (sc *simChain) client(t *testing.T, timeout time.Duration) *Client {
	t.Helper()
	cfg := &Config{
		RPCURL:           "http://127.0.0.1:8545",
		GuestbookAddress: testGuestbook,
		PaymentsAddress:  testPayments,
		PrivateKeyHex:    common.Bytes2Hex(crypto.FromECDSA(sc.key)),
		ReceiptTimeout:   timeout,
	}
	c, err := NewClient(context.Background(), sc.backend.Client(), cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

// TestSubmitOperations tests that every operation kind lands with a receipt
func TestSubmitOperations(t *testing.T) {
	sc := newSimChain(t)
	sc.mine()
	c := sc.client(t, 10*time.Second)

	ops := []batching.Operation{
		batching.NewPostMessage("Alice #1", "Hello from the test suite", 200000),
		batching.NewCreateTodo("Audit", "Review the contract", big.NewInt(10_000_000_000_000), 300000),
		batching.NewSendPayment(testRecipient, big.NewInt(1696137472), "gm", 100000),
	}

	for i, op := range ops {
		receipt, err := c.Submit(context.Background(), batching.Attempt{Sequence: i + 1, Number: 1, Operation: op})
		if err != nil {
			t.Fatalf("Submit(%s) error = %v", op.Kind(), err)
		}
		if receipt.GasUsed == 0 || receipt.BlockNumber == 0 || !strings.HasPrefix(receipt.TxHash, "0x") {
			t.Errorf("Expected populated receipt for %s, got %+v", op.Kind(), receipt)
		}
	}

	bal, err := sc.backend.Client().BalanceAt(context.Background(), common.HexToAddress(testRecipient), nil)
	if err != nil {
		t.Fatalf("BalanceAt() error = %v", err)
	}
	if bal.Sign() != 0 {
		t.Errorf("Expected payment value to go to the payments contract, recipient got %s", bal)
	}
}

// TestSubmitRetryReusesTransaction tests that a retry after a receipt timeout
// waits on the already broadcast transaction instead of signing a new one
func TestSubmitRetryReusesTransaction(t *testing.T) {
	sc := newSimChain(t)
	sc.pause()
	c := sc.client(t, 200*time.Millisecond)

	op := batching.NewPostMessage("Bob", "retry me", 200000)

	_, err := c.Submit(context.Background(), batching.Attempt{Sequence: 1, Number: 1, Operation: op})
	if !batching.IsTransient(err) {
		t.Fatalf("Expected transient receipt timeout, got %v", err)
	}

	sc.mine()
	c.cfg.ReceiptTimeout = 10 * time.Second

	receipt, err := c.Submit(context.Background(), batching.Attempt{Sequence: 1, Number: 2, Operation: op})
	if err != nil {
		t.Fatalf("Retry Submit() error = %v", err)
	}

	nonce, err := sc.backend.Client().NonceAt(context.Background(), c.Sender(), nil)
	if err != nil {
		t.Fatalf("NonceAt() error = %v", err)
	}
	if nonce != 1 {
		t.Errorf("Expected exactly one transaction from sender, nonce is %d", nonce)
	}
	if receipt.TxHash == "" {
		t.Error("Expected receipt hash")
	}
}

// lossyBackend fails the first few broadcasts. When deliver is set the
// transaction still reaches the node before the error is reported.
type lossyBackend struct {
	Backend

	mu       sync.Mutex
	failures int
	deliver  bool
	sendErr  error
	sends    int
}

func (b *lossyBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sends++
	if b.failures == 0 {
		return b.Backend.SendTransaction(ctx, tx)
	}
	b.failures--
	if b.deliver {
		if err := b.Backend.SendTransaction(ctx, tx); err != nil {
			return err
		}
	}
	return b.sendErr
}

func (b *lossyBackend) sendCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sends
}

func (sc *simChain) lossyClient(t *testing.T, lb *lossyBackend, timeout time.Duration) *Client {
	t.Helper()
	lb.Backend = sc.backend.Client()
	cfg := &Config{
		RPCURL:           "http://127.0.0.1:8545",
		GuestbookAddress: testGuestbook,
		PrivateKeyHex:    common.Bytes2Hex(crypto.FromECDSA(sc.key)),
		ReceiptTimeout:   timeout,
	}
	c, err := NewClient(context.Background(), lb, cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func (sc *simChain) nonce(t *testing.T, c *Client) uint64 {
	t.Helper()
	nonce, err := sc.backend.Client().NonceAt(context.Background(), c.Sender(), nil)
	if err != nil {
		t.Fatalf("NonceAt() error = %v", err)
	}
	return nonce
}

// TestBatchBroadcastErrorAfterDelivery tests that a send error for a
// transaction the node did accept is retried without a second write
func TestBatchBroadcastErrorAfterDelivery(t *testing.T) {
	sc := newSimChain(t)
	sc.mine()
	lb := &lossyBackend{failures: 1, deliver: true, sendErr: errors.New("Post \"http://127.0.0.1:8545\": i/o timeout")}
	c := sc.lossyClient(t, lb, 10*time.Second)

	engine, err := batching.NewEngine(c, &batching.Config{MaxAttempts: 3, RetryInterval: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	report, err := engine.SubmitBatch(context.Background(), []batching.Operation{
		batching.NewPostMessage("Carol", "sent once", 200000),
	})
	if err != nil {
		t.Fatalf("SubmitBatch() error = %v", err)
	}

	if report.Succeeded != 1 {
		t.Fatalf("Expected the operation to succeed, got %+v", report.Outcomes)
	}
	if report.Outcomes[0].Attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", report.Outcomes[0].Attempts)
	}
	if nonce := sc.nonce(t, c); nonce != 1 {
		t.Errorf("Expected exactly one transaction from sender, nonce is %d", nonce)
	}
	if got := lb.sendCount(); got != 1 {
		t.Errorf("Expected the accepted transaction not to be sent again, got %d sends", got)
	}
}

// TestSubmitRebroadcastsLostTransaction tests that a retry rebroadcasts the
// original transaction when the node never kept it
func TestSubmitRebroadcastsLostTransaction(t *testing.T) {
	tests := []struct {
		name          string
		sendErr       error
		firstTimeout  time.Duration
		wantFirstText string
	}{
		{"broadcast error", errors.New("connection reset by peer"), 10 * time.Second, "connection reset"},
		{"silently dropped", nil, 300 * time.Millisecond, "pending, no receipt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newSimChain(t)
			sc.mine()
			lb := &lossyBackend{failures: 1, sendErr: tt.sendErr}
			c := sc.lossyClient(t, lb, tt.firstTimeout)

			op := batching.NewPostMessage("Dave", "lost once", 200000)

			_, err := c.Submit(context.Background(), batching.Attempt{Sequence: 1, Number: 1, Operation: op})
			if !batching.IsTransient(err) || !strings.Contains(err.Error(), tt.wantFirstText) {
				t.Fatalf("Expected transient error containing %q, got %v", tt.wantFirstText, err)
			}
			firstHash := c.inflight.tx.Hash().Hex()

			c.cfg.ReceiptTimeout = 10 * time.Second
			receipt, err := c.Submit(context.Background(), batching.Attempt{Sequence: 1, Number: 2, Operation: op})
			if err != nil {
				t.Fatalf("Retry Submit() error = %v", err)
			}

			if receipt.TxHash != firstHash {
				t.Errorf("Expected retry to land %s, got %s", firstHash, receipt.TxHash)
			}
			if got := lb.sendCount(); got != 2 {
				t.Errorf("Expected one rebroadcast, got %d sends", got)
			}
			if nonce := sc.nonce(t, c); nonce != 1 {
				t.Errorf("Expected exactly one transaction from sender, nonce is %d", nonce)
			}
		})
	}
}

// TestSubmitPendingTimeoutNamesTransaction tests that a receipt timeout
// reports the pending transaction hash
func TestSubmitPendingTimeoutNamesTransaction(t *testing.T) {
	sc := newSimChain(t)
	sc.pause()
	c := sc.client(t, 200*time.Millisecond)

	_, err := c.Submit(context.Background(), batching.Attempt{
		Sequence: 1, Number: 1, Operation: batching.NewPostMessage("Erin", "slow block", 200000),
	})
	if err == nil {
		t.Fatal("Expected receipt timeout")
	}
	want := "tx " + c.inflight.tx.Hash().Hex() + " pending, no receipt"
	if !strings.Contains(err.Error(), want) {
		t.Errorf("Expected error to contain %q, got %v", want, err)
	}
}

// TestSubmitPermanentBroadcastError tests that a rejected broadcast is not
// resumed by the next attempt
func TestSubmitPermanentBroadcastError(t *testing.T) {
	sc := newSimChain(t)
	lb := &lossyBackend{failures: 1, sendErr: errors.New("insufficient funds for gas * price + value")}
	c := sc.lossyClient(t, lb, time.Second)

	_, err := c.Submit(context.Background(), batching.Attempt{
		Sequence: 1, Number: 1, Operation: batching.NewPostMessage("Frank", "no funds", 200000),
	})
	if err == nil || batching.IsTransient(err) {
		t.Fatalf("Expected permanent broadcast error, got %v", err)
	}
	if c.inflight != nil {
		t.Error("Expected no in-flight transaction after a rejected broadcast")
	}
}

// TestSubmitWithoutSigner tests the read-only client
func TestSubmitWithoutSigner(t *testing.T) {
	sc := newSimChain(t)
	cfg := &Config{
		RPCURL:           "http://127.0.0.1:8545",
		GuestbookAddress: testGuestbook,
		ReceiptTimeout:   time.Second,
	}
	c, err := NewClient(context.Background(), sc.backend.Client(), cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = c.Submit(context.Background(), batching.Attempt{
		Sequence: 1, Number: 1, Operation: batching.NewPostMessage("a", "b", 200000),
	})
	var pe *batching.PermanentError
	if !errors.As(err, &pe) || !errors.Is(err, errNoSigner) {
		t.Errorf("Expected permanent no-signer error, got %v", err)
	}
}

// TestSubmitPaymentsNotConfigured tests payments without a contract address
func TestSubmitPaymentsNotConfigured(t *testing.T) {
	sc := newSimChain(t)
	c := sc.client(t, time.Second)
	c.payments = nil

	_, err := c.Submit(context.Background(), batching.Attempt{
		Sequence: 1, Number: 1,
		Operation: batching.NewSendPayment(testRecipient, big.NewInt(1), "", 100000),
	})
	if !errors.Is(err, errPaymentsNotConfigured) || batching.IsTransient(err) {
		t.Errorf("Expected permanent payments error, got %v", err)
	}
}

// TestFinishReverted tests that a failed receipt status is permanent
func TestFinishReverted(t *testing.T) {
	c := &Client{}
	_, err := c.finish(&types.Receipt{
		Status:      types.ReceiptStatusFailed,
		TxHash:      common.HexToHash("0x01"),
		BlockNumber: big.NewInt(9),
	})
	if err == nil || batching.IsTransient(err) || !strings.Contains(err.Error(), "reverted in block 9") {
		t.Errorf("Expected permanent revert error, got %v", err)
	}
}

// TestConfigValidate tests chain config checks
func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	if err := valid.Validate(); err != nil {
		t.Fatalf("Default config should be valid, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad rpc", func(c *Config) { c.RPCURL = "base.org" }},
		{"bad guestbook", func(c *Config) { c.GuestbookAddress = "0x1" }},
		{"bad payments", func(c *Config) { c.PaymentsAddress = "nope" }},
		{"bad key", func(c *Config) { c.PrivateKeyHex = "1234" }},
		{"zero timeout", func(c *Config) { c.ReceiptTimeout = 0 }},
		{"negative chain", func(c *Config) { c.ChainID = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

// TestABIsParse tests that the embedded ABIs expose the methods used
func TestABIsParse(t *testing.T) {
	gb, err := parseABI("GuestBook", GuestBookABI)
	if err != nil {
		t.Fatalf("parseABI(GuestBook) error = %v", err)
	}
	for _, m := range []string{methodPostMessage, methodCreateTodo, methodGetMessage, methodGetTotalMessages, methodTodoCounter, methodTodoCreationFee} {
		if _, ok := gb.Methods[m]; !ok {
			t.Errorf("GuestBook ABI missing %s", m)
		}
	}
	if !gb.Methods[methodCreateTodo].IsPayable() {
		t.Error("createTodo should be payable")
	}

	pay, err := parseABI("FluidPay", FluidPayABI)
	if err != nil {
		t.Fatalf("parseABI(FluidPay) error = %v", err)
	}
	if m, ok := pay.Methods[methodSendMessage]; !ok || !m.IsPayable() {
		t.Error("FluidPay ABI should expose payable sendMessage")
	}
}
