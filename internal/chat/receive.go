package chat

import (
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/DerWahreMirakulix/metor/internal/history"
	"github.com/DerWahreMirakulix/metor/internal/protocol"
	"github.com/DerWahreMirakulix/metor/util"
)

// receiveLoop reads lines from the session's stream until the peer
// disconnects, the stream fails, or Disconnect closes it locally.
// Closing the stream is the only way to stop it; there is no separate
// cancellation signal.
func (m *Manager) receiveLoop(s *Session) {
loop:
	for {
		line, err := s.reader.ReadLine()
		if err != nil {
			if err != io.EOF && !util.IsClosedErr(err) {
				m.metrics.RecordError(err.Error())
				m.logger.Debug("receive loop ended", zap.Error(err))
			}
			break
		}
		switch msg := protocol.Parse(line); msg.Kind {
		case protocol.KindDisconnect:
			// Clean peer-initiated close.
			break loop
		case protocol.KindReject:
			// A reject arriving mid-session means nothing; skip it.
		default:
			m.metrics.MessageReceived(int64(len(msg.Text)))
			m.push(EventRemote, msg.Text)
		}
	}

	// Teardown.  Whoever still owns the slot clears it; the stream is
	// closed exactly once either way.
	m.mu.Lock()
	identity := s.identity
	suppress := s.closedBySelf
	owned := m.active == s
	if owned {
		m.active = nil
	}
	m.mu.Unlock()
	s.Close()

	if owned {
		m.metrics.SessionClosed()
	}
	if suppress {
		// Disconnect already reported this teardown.
		return
	}
	m.push(EventInfo, "disconnected")
	m.record(history.In, history.Disconnected, identity)
	m.logger.Info("session closed",
		zap.String("direction", "in"),
		zap.String("remote", identity),
		zap.Duration("duration", time.Since(s.establishedAt)))
}
