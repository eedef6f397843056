package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/concave-dev/guestbook/internal/logging"
)

// Stats is a snapshot of the signer account and guestbook contract.
// Counters the contract does not expose are nil.
type Stats struct {
	ChainID       *big.Int `json:"chain_id"`
	Contract      string   `json:"contract"`
	Sender        string   `json:"sender,omitempty"`
	Balance       *big.Int `json:"balance,omitempty"`
	TotalMessages *big.Int `json:"total_messages"`
	TodoCounter   *big.Int `json:"todo_counter,omitempty"`
	TodoFee       *big.Int `json:"todo_fee,omitempty"`
}

// Message is one guestbook entry.
type Message struct {
	Index     uint64    `json:"index"`
	Sender    string    `json:"sender"`
	Name      string    `json:"name"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats reads the signer balance and the guestbook counters. The message
// count is required; the todo counters are optional since older deployments
// lack them.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ChainID:  c.ChainID(),
		Contract: common.HexToAddress(c.cfg.GuestbookAddress).Hex(),
	}

	if c.key != nil {
		balance, err := c.backend.BalanceAt(ctx, c.sender, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get balance: %w", err)
		}
		stats.Sender = c.sender.Hex()
		stats.Balance = balance
	}

	total, err := c.callUint(ctx, methodGetTotalMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to read total messages: %w", err)
	}
	stats.TotalMessages = total

	if counter, err := c.callUint(ctx, methodTodoCounter); err == nil {
		stats.TodoCounter = counter
	} else {
		logging.Debug("Chain: %s unavailable: %v", methodTodoCounter, err)
	}
	if fee, err := c.callUint(ctx, methodTodoCreationFee); err == nil {
		stats.TodoFee = fee
	} else {
		logging.Debug("Chain: %s unavailable: %v", methodTodoCreationFee, err)
	}

	return stats, nil
}

// RecentMessages returns up to n of the newest guestbook entries, newest
// first.
func (c *Client) RecentMessages(ctx context.Context, n int) ([]Message, error) {
	if n <= 0 {
		return nil, fmt.Errorf("message count must be positive, got %d", n)
	}

	total, err := c.callUint(ctx, methodGetTotalMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to read total messages: %w", err)
	}

	count := total.Uint64()
	messages := make([]Message, 0, min(uint64(n), count))

	for i := count; i > 0 && len(messages) < n; i-- {
		msg, err := c.message(ctx, i-1)
		if err != nil {
			return nil, fmt.Errorf("failed to read message %d: %w", i-1, err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

func (c *Client) message(ctx context.Context, index uint64) (Message, error) {
	var out []any
	if err := c.guestbook.Call(&bind.CallOpts{Context: ctx}, &out, methodGetMessage, new(big.Int).SetUint64(index)); err != nil {
		return Message{}, err
	}
	if len(out) != 4 {
		return Message{}, fmt.Errorf("unexpected %s result length %d", methodGetMessage, len(out))
	}

	sender := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	name := *abi.ConvertType(out[1], new(string)).(*string)
	body := *abi.ConvertType(out[2], new(string)).(*string)
	ts := abi.ConvertType(out[3], new(big.Int)).(*big.Int)

	return Message{
		Index:     index,
		Sender:    sender.Hex(),
		Name:      name,
		Body:      body,
		Timestamp: time.Unix(ts.Int64(), 0).UTC(),
	}, nil
}

func (c *Client) callUint(ctx context.Context, method string) (*big.Int, error) {
	var out []any
	if err := c.guestbook.Call(&bind.CallOpts{Context: ctx}, &out, method); err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected %s result length %d", method, len(out))
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}
