package transport

import (
	"context"
	"fmt"
	"net"
)

// Direct provides chat streams over plain TCP with no anonymization.
// It exists for local development and tests; the published identity
// is simply the listener's host:port.
type Direct struct {
	listener net.Listener
}

var _ Provider = (*Direct)(nil)

// NewDirect starts listening on listenAddr and returns the provider.
func NewDirect(listenAddr string) (*Direct, error) {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", listenAddr, err)
	}
	return &Direct{listener: ln}, nil
}

// Identity returns the listener's address.
func (d *Direct) Identity() string {
	return d.listener.Addr().String()
}

// Dial connects to address over TCP.
func (d *Direct) Dial(ctx context.Context, address string) (net.Conn, error) {
	var dialer net.Dialer
	return dialer.DialContext(ctx, "tcp", address)
}

// Listener returns the TCP listener.
func (d *Direct) Listener() net.Listener {
	return d.listener
}

// Close stops the listener.
func (d *Direct) Close() error {
	return d.listener.Close()
}
