// Package logging provides ID formatting utilities for consistent display of
// batch IDs, transaction hashes and account addresses across all log output.
//
// Full values are printed when DEBUG logging is enabled so that a hash can be
// pasted straight into a block explorer. At INFO and above values are shortened
// to keep per-operation progress lines on one terminal row.
package logging

import (
	"github.com/charmbracelet/log"
	"github.com/concave-dev/guestbook/internal/utils"
)

// FormatID formats an ID for logging based on the current log level context.
// Returns the full ID for debug logging and a 12-character prefix otherwise.
func FormatID(id string) string {
	// Debug messages go to stderr, so its level decides
	if stderrLogger.GetLevel() <= log.DebugLevel {
		return id
	}
	return utils.TruncateIDSafe(id)
}

// FormatBatchID formats a batch ID for logging with context-aware truncation.
//
// Usage: logging.Info("Queued batch %s", logging.FormatBatchID(batchID))
func FormatBatchID(batchID string) string {
	return FormatID(batchID)
}

// FormatTxHash formats a transaction hash for logging. Outside of debug
// contexts the hash is shown as "0x1234abcd…89ef" so both ends stay visible.
//
// Usage: logging.Info("Confirmed %s", logging.FormatTxHash(receipt.TxHash))
func FormatTxHash(hash string) string {
	if stderrLogger.GetLevel() <= log.DebugLevel {
		return hash
	}
	return utils.AbbreviateHex(hash)
}

// FormatAddress formats an account or contract address for logging.
func FormatAddress(addr string) string {
	return FormatTxHash(addr)
}
