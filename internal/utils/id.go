// Package utils provides common utility functions for guestbook tools.
//
// This file implements ID generation and display helpers. Batch IDs are
// 12-character hex strings (Docker short ID style) so they can be typed on the
// command line; transaction hashes are abbreviated for table and log output.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ShortIDLength is the number of characters kept by TruncateIDSafe.
const ShortIDLength = 12

// GenerateID creates a unique 12-character hex identifier for batch runs.
// Uses crypto/rand so IDs assigned by different daemon restarts do not collide
// inside the shared history store.
//
// Returns format: "a1b2c3d4e5f6"
func GenerateID() (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// TruncateIDSafe returns the first ShortIDLength characters of id, or id
// itself when it is already short enough.
func TruncateIDSafe(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}

// AbbreviateHex shortens a 0x-prefixed hash or address to "0x12345678…abcd".
// Values that are already short are returned unchanged.
func AbbreviateHex(value string) string {
	if len(value) <= 16 {
		return value
	}
	return value[:10] + "…" + value[len(value)-4:]
}
