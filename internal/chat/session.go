// Package chat implements the session engine of the messenger: a
// single-slot session manager, the inbound accept path, and the
// per-session receive loop.
//
// At most one conversation exists at a time.  The slot holding it is
// claimed under one mutex before any blocking I/O, on both the inbound
// and the outbound path, so concurrent connection attempts always
// resolve to exactly one winner; the loser is rejected.
package chat

import (
	"net"
	"sync"
	"time"

	"github.com/DerWahreMirakulix/metor/internal/protocol"
)

// Session is one established conversation with a peer.  It is owned
// exclusively by the Manager; the receive loop holds a transient
// reference for its lifetime.
//
// A Session doubles as the claim token for the Manager's single slot:
// the outbound path installs an empty Session before dialing and fills
// in the stream afterwards.  Fields other than conn and reader are
// guarded by the Manager's mutex.
type Session struct {
	conn   net.Conn
	reader *protocol.LineReader

	identity      string // remote identity, protocol.Anonymous when not announced
	establishedAt time.Time

	// closedBySelf suppresses the receive loop's teardown report when
	// the local side initiated the disconnect.
	closedBySelf bool

	closeOnce sync.Once
}

func newSession(conn net.Conn, r *protocol.LineReader) *Session {
	return &Session{conn: conn, reader: r}
}

// Close closes the underlying stream.  Both the receive loop and
// Disconnect call it; only the first call touches the connection.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.conn != nil {
			err = s.conn.Close()
		}
	})
	return err
}
