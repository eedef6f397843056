// Package chain submits guestbook operations to an EVM chain and reads
// guestbook state back.
//
// The Client implements batching.Submitter. Every write goes through one
// mutex so that submissions from the signing account are serialized even
// when several batches share a Client, which keeps nonces in order.
//
// RETRY SAFETY:
// The engine retries an operation by calling Submit again with the same
// sequence and a higher attempt number. A transaction is signed first and
// remembered before it is broadcast. When the previous attempt got that far,
// even if its broadcast reported an error, the client does not sign a new one. It looks the
// old transaction up, rebroadcasts it if the node dropped it, and waits for
// its receipt again. A retry therefore cannot land the same write twice.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/concave-dev/guestbook/internal/batching"
	"github.com/concave-dev/guestbook/internal/config"
	"github.com/concave-dev/guestbook/internal/logging"
	"github.com/concave-dev/guestbook/internal/validate"
)

// Backend is the part of the node API the client uses. *ethclient.Client and
// the go-ethereum simulated backend both satisfy it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
}

// Config describes the chain endpoint, the contracts and the signer.
type Config struct {
	RPCURL           string        // node endpoint, http(s) or ws(s)
	GuestbookAddress string        // GuestBook contract
	PaymentsAddress  string        // FluidPay contract, optional
	PrivateKeyHex    string        // signer key, optional for read-only use
	ChainID          int64         // 0 asks the node
	ReceiptTimeout   time.Duration // upper bound on one receipt wait
}

// DefaultConfig returns a config for the public Base mainnet guestbook.
func DefaultConfig() *Config {
	return &Config{
		RPCURL:           config.DefaultRPCURL,
		GuestbookAddress: config.DefaultGuestbookAddress,
		ReceiptTimeout:   config.DefaultReceiptTimeout,
	}
}

// Validate checks the config. The key is only checked when present.
func (c *Config) Validate() error {
	if err := validate.RPCURL(c.RPCURL); err != nil {
		return err
	}
	if err := validate.EthAddress(c.GuestbookAddress, "guestbook address"); err != nil {
		return err
	}
	if c.PaymentsAddress != "" {
		if err := validate.EthAddress(c.PaymentsAddress, "payments address"); err != nil {
			return err
		}
	}
	if c.PrivateKeyHex != "" {
		if err := validate.PrivateKeyHex(c.PrivateKeyHex); err != nil {
			return err
		}
	}
	if c.ChainID < 0 {
		return fmt.Errorf("chain id cannot be negative")
	}
	return validate.ValidatePositiveTimeout(c.ReceiptTimeout, "receipt timeout")
}

// inflightTx is the last transaction broadcast for an operation that has
// not reached a receipt yet.
type inflightTx struct {
	sequence int
	tx       *types.Transaction
}

// Client submits operations and reads contract state.
type Client struct {
	cfg     Config
	backend Backend
	closeFn func()

	key     *ecdsa.PrivateKey
	sender  common.Address
	chainID *big.Int

	guestbook *bind.BoundContract
	payments  *bind.BoundContract // nil when PaymentsAddress is empty

	mu       sync.Mutex
	inflight *inflightTx
}

var _ batching.Submitter = (*Client)(nil)

// Dial connects to cfg.RPCURL and returns a client bound to the configured
// contracts.
func Dial(ctx context.Context, cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rpcClient, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.RPCURL, err)
	}

	c, err := NewClient(ctx, rpcClient, cfg)
	if err != nil {
		rpcClient.Close()
		return nil, err
	}
	c.closeFn = rpcClient.Close
	return c, nil
}

// NewClient builds a client on an existing backend.
func NewClient(ctx context.Context, backend Backend, cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:     *cfg,
		backend: backend,
	}

	if cfg.PrivateKeyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKeyHex), "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		c.key = key
		c.sender = crypto.PubkeyToAddress(key.PublicKey)
	}

	if cfg.ChainID > 0 {
		c.chainID = big.NewInt(cfg.ChainID)
	} else {
		id, err := backend.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get chain id: %w", err)
		}
		c.chainID = id
	}

	gbABI, err := parseABI("GuestBook", GuestBookABI)
	if err != nil {
		return nil, err
	}
	c.guestbook = bind.NewBoundContract(common.HexToAddress(cfg.GuestbookAddress), gbABI, backend, backend, backend)

	if cfg.PaymentsAddress != "" {
		payABI, err := parseABI("FluidPay", FluidPayABI)
		if err != nil {
			return nil, err
		}
		c.payments = bind.NewBoundContract(common.HexToAddress(cfg.PaymentsAddress), payABI, backend, backend, backend)
	}

	if c.key != nil {
		logging.Info("Chain: Connected to chain %d as %s", c.chainID, logging.FormatAddress(c.sender.Hex()))
	} else {
		logging.Info("Chain: Connected to chain %d (read-only)", c.chainID)
	}
	return c, nil
}

// Close releases the RPC connection.
func (c *Client) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

// Sender returns the signing account, or the zero address when read-only.
func (c *Client) Sender() common.Address {
	return c.sender
}

// ChainID returns the chain id used for signing.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// CanSign reports whether a signing key is loaded.
func (c *Client) CanSign() bool {
	return c.key != nil
}

// Submit performs one write attempt for the operation and waits for its
// receipt. Errors are classified for the batching engine.
func (c *Client) Submit(ctx context.Context, attempt batching.Attempt) (batching.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.key == nil {
		return batching.Receipt{}, batching.Permanent(errNoSigner)
	}

	if attempt.Number > 1 && c.inflight != nil && c.inflight.sequence == attempt.Sequence {
		return c.resume(ctx, c.inflight.tx)
	}
	c.inflight = nil

	tx, err := c.sign(ctx, attempt.Operation)
	if err != nil {
		return batching.Receipt{}, Classify(err)
	}

	// Recorded before broadcast so a retry resumes it even after a send error
	c.inflight = &inflightTx{sequence: attempt.Sequence, tx: tx}
	if err := c.backend.SendTransaction(ctx, tx); err != nil && !isAlreadyKnown(err) {
		classified := Classify(err)
		if !batching.IsTransient(classified) {
			c.inflight = nil
		}
		logging.Debug("Chain: Broadcast of tx %s failed: %v", logging.FormatTxHash(tx.Hash().Hex()), err)
		return batching.Receipt{}, classified
	}

	logging.Debug("Chain: Sent %s tx %s (nonce %d, gas limit %d)",
		attempt.Operation.Kind(), logging.FormatTxHash(tx.Hash().Hex()), tx.Nonce(), tx.Gas())

	return c.await(ctx, tx)
}

// sign builds and signs the contract call for op without broadcasting it.
func (c *Client) sign(ctx context.Context, op batching.Operation) (*types.Transaction, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, batching.Permanent(fmt.Errorf("failed to build transactor: %w", err))
	}
	opts.Context = ctx
	opts.NoSend = true
	opts.GasLimit = op.GasLimit
	if v := op.AttachedValue(); v != nil {
		opts.Value = new(big.Int).Set(v)
	}

	switch p := op.Payload.(type) {
	case batching.PostMessage:
		return c.guestbook.Transact(opts, methodPostMessage, p.Name, p.Body)
	case batching.CreateTodo:
		return c.guestbook.Transact(opts, methodCreateTodo, p.Title, p.Description)
	case batching.SendPayment:
		if c.payments == nil {
			return nil, batching.Permanent(errPaymentsNotConfigured)
		}
		return c.payments.Transact(opts, methodSendMessage, common.HexToAddress(p.Recipient), p.Note)
	default:
		return nil, batching.Permanent(fmt.Errorf("unsupported operation kind %q", op.Kind()))
	}
}

// resume continues an earlier attempt: it returns the receipt if the
// transaction landed, rebroadcasts it if the node forgot it, then waits.
func (c *Client) resume(ctx context.Context, tx *types.Transaction) (batching.Receipt, error) {
	hash := tx.Hash()

	receipt, err := c.backend.TransactionReceipt(ctx, hash)
	if err == nil && receipt != nil {
		logging.Debug("Chain: Earlier tx %s already mined", logging.FormatTxHash(hash.Hex()))
		return c.finish(receipt)
	}

	_, _, err = c.backend.TransactionByHash(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		logging.Warn("Chain: Tx %s dropped by node, rebroadcasting", logging.FormatTxHash(hash.Hex()))
		if err := c.backend.SendTransaction(ctx, tx); err != nil && !isAlreadyKnown(err) {
			return batching.Receipt{}, Classify(err)
		}
	} else if err != nil {
		return batching.Receipt{}, Classify(err)
	} else {
		logging.Debug("Chain: Still waiting on tx %s", logging.FormatTxHash(hash.Hex()))
	}

	return c.await(ctx, tx)
}

// await waits for tx to be mined, bounded by ReceiptTimeout.
func (c *Client) await(ctx context.Context, tx *types.Transaction) (batching.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.ReceiptTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.backend, tx)
	if err != nil {
		if ctx.Err() != nil {
			return batching.Receipt{}, ctx.Err()
		}
		return batching.Receipt{}, batching.Transient(
			fmt.Errorf("tx %s pending, no receipt within %v: %w", tx.Hash().Hex(), c.cfg.ReceiptTimeout, err))
	}
	return c.finish(receipt)
}

// finish converts a receipt and clears the in-flight transaction.
func (c *Client) finish(receipt *types.Receipt) (batching.Receipt, error) {
	c.inflight = nil

	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return batching.Receipt{}, revertedError(receipt.TxHash.Hex(), block)
	}

	return batching.Receipt{
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: block,
		GasUsed:     receipt.GasUsed,
	}, nil
}
