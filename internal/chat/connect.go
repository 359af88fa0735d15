package chat

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/DerWahreMirakulix/metor/internal/errors"
	"github.com/DerWahreMirakulix/metor/internal/history"
	"github.com/DerWahreMirakulix/metor/internal/protocol"
)

// Connect dials address and establishes an outbound session.
//
// Fail-fast conditions return a sentinel with no side effects:
// [errors.ErrSelfDial] when address is the local identity, and
// [errors.ErrAlreadyConnected] when the slot is taken.  Dial and
// handshake-write failures are reported through the sink and the
// event log before being returned.
//
// The remote identity of an outbound session is the dialed address;
// nothing is read back from the peer.  When anonymous is true the
// handshake announces "anonymous" instead of the local identity.
func (m *Manager) Connect(ctx context.Context, address string, anonymous bool) error {
	self := m.transport.Identity()
	if address == self {
		return errors.ErrSelfDial
	}

	// Claim the slot before dialing so concurrent attempts, inbound
	// or outbound, see it taken and back off.
	s := &Session{}
	m.mu.Lock()
	if m.active != nil {
		m.mu.Unlock()
		return errors.ErrAlreadyConnected
	}
	m.active = s
	m.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, m.dialTimeout)
	defer cancel()

	conn, err := m.transport.Dial(dialCtx, address)
	if err != nil {
		m.release(s)
		m.reportOutboundRejected(address, err)
		return errors.Wrap("dial", address, err)
	}

	identityToSend := self
	if anonymous {
		identityToSend = protocol.Anonymous
	}
	conn.SetWriteDeadline(time.Now().Add(m.dialTimeout)) //nolint:errcheck
	_, werr := io.WriteString(conn, protocol.FormatInit(identityToSend))
	conn.SetWriteDeadline(time.Time{}) //nolint:errcheck
	if werr != nil {
		conn.Close()
		m.release(s)
		m.reportOutboundRejected(address, werr)
		return errors.Wrap("handshake", address, werr)
	}

	m.mu.Lock()
	if m.active != s {
		// The claim was released while we were dialing.
		m.mu.Unlock()
		conn.Close()
		return errors.New("connect aborted")
	}
	s.conn = conn
	s.reader = protocol.NewLineReader(conn)
	s.identity = address
	s.establishedAt = time.Now()
	m.mu.Unlock()

	m.push(EventInfo, "connected with "+address)
	m.record(history.Out, history.Connected, address)
	m.metrics.SessionOpened()
	m.logger.Info("session established",
		zap.String("direction", "out"),
		zap.String("remote", address),
		zap.Bool("anonymous", anonymous))

	go m.receiveLoop(s)
	return nil
}

// reportOutboundRejected surfaces a failed outbound attempt the same
// way a peer rejection would appear.
func (m *Manager) reportOutboundRejected(address string, err error) {
	m.push(EventInfo, "rejected")
	m.record(history.Out, history.Rejected, address)
	m.metrics.SessionRejected()
	m.logger.Debug("outbound connect failed", zap.String("remote", address), zap.Error(err))
}
