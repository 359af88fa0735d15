package chat

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/DerWahreMirakulix/metor/internal/history"
	"github.com/DerWahreMirakulix/metor/internal/protocol"
	"github.com/DerWahreMirakulix/metor/util"
)

// Serve runs the accept loop on the transport's listener until ctx is
// cancelled.  Each inbound stream gets its own goroutine, so a
// stalled handshake never blocks accepting.
func (m *Manager) Serve(ctx context.Context) error {
	ln := m.transport.Listener()

	// Unblock Accept when the context expires.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	m.logger.Info("listening", zap.String("identity", m.transport.Identity()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if util.IsClosedErr(err) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go m.handleInbound(conn)
	}
}

// handleInbound decides the fate of one accepted stream: reject it if
// a session is active, otherwise claim the slot, run the handshake,
// and become the session's receive loop.
func (m *Manager) handleInbound(conn net.Conn) {
	self := m.transport.Identity()
	r := protocol.NewLineReader(conn)

	m.mu.Lock()
	if m.active != nil {
		// Busy: learn who is knocking, refuse, hang up.  The reads
		// and writes are deadline-bounded so the lock is not held
		// indefinitely.
		identity := m.readClaimedIdentity(r)
		conn.SetWriteDeadline(time.Now().Add(m.handshakeTimeout)) //nolint:errcheck
		io.WriteString(conn, protocol.FormatReject(self))         //nolint:errcheck
		conn.Close()
		m.mu.Unlock()

		m.push(EventInfo, fmt.Sprintf("%s incoming - rejected", identity))
		m.record(history.In, history.Rejected, identity)
		m.metrics.SessionRejected()
		m.logger.Info("inbound rejected while busy", zap.String("remote", identity))
		return
	}

	// Claim the slot before the handshake read so a second concurrent
	// stream is rejected instead of racing for it.
	s := newSession(conn, r)
	m.active = s
	m.mu.Unlock()

	identity := m.readClaimedIdentity(r)

	m.mu.Lock()
	if m.active != s {
		// The slot was cleared while we were reading the handshake.
		m.mu.Unlock()
		s.Close()
		return
	}
	s.identity = identity
	s.establishedAt = time.Now()
	m.mu.Unlock()

	m.push(EventInfo, "connected with "+identity)
	m.record(history.In, history.Connected, identity)
	m.metrics.SessionOpened()
	m.logger.Info("session established",
		zap.String("direction", "in"),
		zap.String("remote", identity))

	m.receiveLoop(s)
}

// readClaimedIdentity reads the handshake line with a bounded wait.
// Anything other than a well-formed "/init <identity>" degrades to
// "anonymous"; a missing or late handshake is not an error.
func (m *Manager) readClaimedIdentity(r *protocol.LineReader) string {
	line, err := r.ReadLineTimeout(m.handshakeTimeout)
	if err != nil {
		return protocol.Anonymous
	}
	msg := protocol.Parse(line)
	if msg.Kind != protocol.KindInit || msg.Identity == "" {
		return protocol.Anonymous
	}
	return msg.Identity
}
