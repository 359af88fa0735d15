// Package transport provides abstractions for reaching chat peers.
// Providers handle the "how" of stream establishment — an embedded
// Tor process, an external Tor daemon, or plain TCP — independent of
// what happens over the stream (which is the chat engine's job).
package transport

import (
	"context"
	"net"
)

// Provider supplies the endpoint's published address together with
// the means to dial peers and accept inbound streams for it.
// Implementations are ready for use when their constructor returns.
type Provider interface {
	// Identity returns the address peers use to reach this endpoint.
	Identity() string

	// Dial opens a stream to the peer published at address.
	Dial(ctx context.Context, address string) (net.Conn, error)

	// Listener accepts inbound streams destined for this endpoint.
	Listener() net.Listener

	// Close releases the provider's resources, including the
	// listener.  Blocked Accept calls return after Close.
	Close() error
}
