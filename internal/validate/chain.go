package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	etherAmountRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,18})?$`)
	privateKeyRegex  = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)
)

// EthAddress checks a 0x-prefixed 20-byte hex address.
func EthAddress(addr, fieldName string) error {
	if addr == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	if err := ValidateField(addr, "eth_addr"); err != nil {
		return fmt.Errorf("%s '%s' is not a valid 0x-prefixed address", fieldName, addr)
	}
	return nil
}

// RPCURL checks that a chain endpoint is an http(s) or ws(s) URL with a host.
func RPCURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("rpc url cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid rpc url '%s': %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("rpc url '%s' must use http, https, ws or wss", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("rpc url '%s' has no host", raw)
	}
	return nil
}

// PrivateKeyHex checks the shape of a secp256k1 private key in hex. The key
// itself is never included in the error.
func PrivateKeyHex(key string) error {
	if key == "" {
		return fmt.Errorf("private key is not set")
	}
	if !privateKeyRegex.MatchString(strings.TrimSpace(key)) {
		return fmt.Errorf("private key must be 32 bytes of hex (64 characters, optional 0x prefix)")
	}
	return nil
}

// EtherAmount checks a decimal ether amount such as "0.00001". At most 18
// fractional digits are allowed since that is the precision of wei.
func EtherAmount(amount, fieldName string) error {
	if !etherAmountRegex.MatchString(amount) {
		return fmt.Errorf("%s '%s' must be a decimal ether amount with at most 18 decimals", fieldName, amount)
	}
	return nil
}
