package chain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/concave-dev/guestbook/internal/batching"
)

var (
	errNoSigner              = errors.New("no signing key configured")
	errPaymentsNotConfigured = errors.New("payments contract address not configured")
)

// Node error fragments that no amount of retrying will fix.
var permanentFragments = []string{
	"insufficient funds",
	"execution reverted",
	"invalid argument",
	"intrinsic gas too low",
	"gas required exceeds allowance",
	"exceeds block gas limit",
	"invalid sender",
	"transaction type not supported",
	"max fee per gas less than block base fee",
	"abi:",
}

// Node error fragments known to clear up on their own.
var transientFragments = []string{
	"nonce too low",
	"nonce too high",
	"replacement transaction underpriced",
	"already known",
	"transaction underpriced",
	"txpool is full",
	"too many requests",
	"rate limit",
	"timeout",
	"connection reset",
	"connection refused",
	"broken pipe",
	"temporarily unavailable",
	"eof",
	"header not found",
}

// Classify maps an error from the node or transport to a batching error
// class. Errors already classified pass through, as do context errors so the
// engine can see cancellation. Only transport failures and the node errors in
// transientFragments are retried; anything unrecognized is permanent.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var te *batching.TransientError
	var pe *batching.PermanentError
	if errors.As(err, &te) || errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return batching.Transient(err)
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 || httpErr.StatusCode >= 500 {
			return batching.Transient(err)
		}
		return batching.Permanent(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return batching.Transient(err)
	}

	msg := strings.ToLower(err.Error())
	for _, frag := range permanentFragments {
		if strings.Contains(msg, frag) {
			return batching.Permanent(err)
		}
	}
	for _, frag := range transientFragments {
		if strings.Contains(msg, frag) {
			return batching.Transient(err)
		}
	}

	return batching.Permanent(err)
}

func isAlreadyKnown(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already known") || strings.Contains(msg, "known transaction")
}

func revertedError(hash string, block uint64) error {
	return batching.Permanent(fmt.Errorf("transaction %s reverted in block %d", hash, block))
}
