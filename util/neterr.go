package util

import (
	"errors"
	"io"
	"net"
)

// IsClosedErr reports whether err is one of the errors a blocking read
// or write returns when the connection was closed — locally or by the
// peer.  The receive loop uses this to tell an orderly teardown from a
// genuine failure.
func IsClosedErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	// net.OpError wrapping "use of closed network connection"
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}
