// Package netutil provides network helpers shared by guestbookd and guestctl:
// listener binding with typed errors and classification of dial failures so
// callers can print a useful hint instead of a raw syscall error.
package netutil

import (
	"errors"
	"net"
	"syscall"
)

// IsAddressInUseError reports whether err is an "address already in use"
// failure from binding a socket.
func IsAddressInUseError(err error) bool {
	var inUse *AddressInUseError
	if errors.As(err, &inUse) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.EADDRINUSE)
	}
	return false
}

// IsConnectionRefusedError reports whether err is a refused TCP connection,
// typically an RPC node or daemon that is not running.
func IsConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

// IsDNSError reports whether err is a failed host name lookup.
func IsDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// DialHint returns a one-line suggestion for a failed connection to what,
// or "" when the error has no obvious cause.
func DialHint(err error, what string) string {
	switch {
	case IsConnectionRefusedError(err):
		return "TIP: Check that " + what + " is running and reachable"
	case IsDNSError(err):
		return "TIP: The host name of " + what + " could not be resolved"
	default:
		return ""
	}
}
