// Package tor supplies transport providers backed by the Tor network.
//
// Embedded runs its own tor process and publishes a v3 onion service
// whose key is persisted in the data directory, so the endpoint keeps
// one address across runs.  External relies on an operator-managed
// tor daemon instead: dials go through its SOCKS port and inbound
// streams arrive on a local port the operator's torrc maps a hidden
// service to.
package tor

import (
	"net"
	"strconv"
)

// servicePort is the virtual port every endpoint's onion service
// listens on; peers are always dialed there.
const servicePort = 80

// ensurePort appends the chat service port to a bare onion address.
func ensurePort(address string) string {
	if _, _, err := net.SplitHostPort(address); err != nil {
		return net.JoinHostPort(address, strconv.Itoa(servicePort))
	}
	return address
}
