package netutil

import (
	"fmt"
	"net"
)

// AddressInUseError is returned by ListenTCP when the port is taken. The
// original error is preserved for errors.Is checks.
type AddressInUseError struct {
	Port    int
	Address string
	Err     error
}

func (e *AddressInUseError) Error() string {
	return fmt.Sprintf("port %d is already in use on %s", e.Port, e.Address)
}

func (e *AddressInUseError) Unwrap() error {
	return e.Err
}

// ListenTCP binds an IPv4 TCP listener on address:port. The daemon binds its
// API port before dialing the chain so a busy port fails startup at once.
func ListenTCP(address string, port int) (net.Listener, error) {
	addr := fmt.Sprintf("%s:%d", address, port)

	listener, err := net.Listen("tcp4", addr)
	if err != nil {
		if IsAddressInUseError(err) {
			return nil, &AddressInUseError{Port: port, Address: address, Err: err}
		}
		return nil, fmt.Errorf("failed to bind to %s: %w", addr, err)
	}
	return listener, nil
}

// ListenerPort returns the TCP port a listener is bound to. Useful with
// port 0 in tests.
func ListenerPort(listener net.Listener) (int, error) {
	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("listener is not a TCP listener: %T", listener.Addr())
	}
	return tcpAddr.Port, nil
}
