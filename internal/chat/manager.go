package chat

import (
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DerWahreMirakulix/metor/internal/errors"
	"github.com/DerWahreMirakulix/metor/internal/history"
	"github.com/DerWahreMirakulix/metor/internal/metrics"
	"github.com/DerWahreMirakulix/metor/internal/protocol"
	"github.com/DerWahreMirakulix/metor/internal/transport"
)

const (
	defaultDialTimeout      = 10 * time.Second
	defaultHandshakeTimeout = 5 * time.Second
)

// Options configure a Manager.  Transport is required; everything
// else has a usable zero-value default.
type Options struct {
	Transport transport.Provider
	Recorder  history.Recorder   // connection-state event log, may be nil
	Sink      Sink               // UI event consumer, may be nil
	Metrics   *metrics.Collector // may be nil
	Logger    *zap.Logger        // may be nil

	DialTimeout      time.Duration // bound on outbound dials, default 10s
	HandshakeTimeout time.Duration // bound on handshake reads, default 5s
}

// Manager owns the single active-session slot.  All public methods
// are safe for concurrent use.
type Manager struct {
	transport transport.Provider
	recorder  history.Recorder
	sink      Sink
	metrics   *metrics.Collector
	logger    *zap.Logger

	dialTimeout      time.Duration
	handshakeTimeout time.Duration

	mu     sync.Mutex
	active *Session
}

// NewManager returns a Manager using the given transport provider.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = defaultHandshakeTimeout
	}
	return &Manager{
		transport:        opts.Transport,
		recorder:         opts.Recorder,
		sink:             opts.Sink,
		metrics:          opts.Metrics,
		logger:           opts.Logger,
		dialTimeout:      opts.DialTimeout,
		handshakeTimeout: opts.HandshakeTimeout,
	}
}

// IsConnected reports whether a session currently occupies the slot.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != nil
}

// Remote returns the active session's remote identity.  ok is false
// when no session is active.
func (m *Manager) Remote() (identity string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return "", false
	}
	return m.active.identity, true
}

// Send writes text as a chat line to the active session.  A write
// failure is returned to the caller but does not tear the session
// down; only the receive loop's close detection does that.
func (m *Manager) Send(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.active
	if s == nil || s.conn == nil {
		return errors.ErrNotConnected
	}
	if _, err := io.WriteString(s.conn, protocol.FormatChat(text)); err != nil {
		m.metrics.RecordError(err.Error())
		m.logger.Debug("send failed", zap.String("remote", s.identity), zap.Error(err))
		return errors.Wrap("send", s.identity, err)
	}
	m.metrics.MessageSent(int64(len(text)))
	return nil
}

// Disconnect tears down the active session, if any, and returns its
// remote identity.  When initiatedBySelf is true a best-effort
// "/disconnect" line is sent first and the receive loop's own
// teardown report is suppressed; recording the outbound disconnect
// event is the caller's job.
func (m *Manager) Disconnect(initiatedBySelf bool) (identity string, ok bool) {
	m.mu.Lock()
	s := m.active
	if s == nil {
		m.mu.Unlock()
		return "", false
	}
	identity = s.identity
	established := !s.establishedAt.IsZero()
	if initiatedBySelf {
		s.closedBySelf = true
		if s.conn != nil {
			// Best effort; the stream is going away regardless.
			s.conn.SetWriteDeadline(time.Now().Add(m.handshakeTimeout)) //nolint:errcheck
			io.WriteString(s.conn, protocol.FormatDisconnect(m.transport.Identity())) //nolint:errcheck
		}
	}
	m.active = nil
	m.mu.Unlock()

	s.Close()
	// A claim that never completed its handshake was never counted as
	// an open session.
	if established {
		m.metrics.SessionClosed()
		m.logger.Info("session closed",
			zap.String("remote", identity),
			zap.Bool("self_initiated", initiatedBySelf),
			zap.Duration("duration", time.Since(s.establishedAt)))
	}
	return identity, true
}

// ── Internal helpers ─────────────────────────────────────────────────

// release clears the slot if s still holds the claim.
func (m *Manager) release(s *Session) {
	m.mu.Lock()
	if m.active == s {
		m.active = nil
	}
	m.mu.Unlock()
}

func (m *Manager) push(kind EventKind, text string) {
	if m.sink != nil {
		m.sink.Push(Event{Kind: kind, Text: text})
	}
}

func (m *Manager) record(dir history.Direction, status history.Status, identity string) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Record(dir, status, identity); err != nil {
		m.logger.Warn("event log write failed", zap.Error(err))
	}
}
