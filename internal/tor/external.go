package tor

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/net/proxy"
)

// ExternalOptions configures use of an operator-managed tor daemon.
type ExternalOptions struct {
	SocksAddr  string // the daemon's SOCKS5 endpoint, e.g. "127.0.0.1:9050"
	Identity   string // onion address the operator's torrc publishes
	ListenAddr string // local address the hidden service forwards to
	Logger     *zap.Logger
}

// External is a transport provider backed by an already-running tor
// daemon.  Publishing the onion service is the operator's job (a
// torrc HiddenServicePort pointing at ListenAddr); this provider
// dials through the daemon's SOCKS port and accepts the forwarded
// streams.
type External struct {
	identity string
	listener net.Listener
	dialer   proxy.ContextDialer
	logger   *zap.Logger
}

// NewExternal waits for the daemon's SOCKS port to accept
// connections, then starts the local listener.
func NewExternal(ctx context.Context, opts ExternalOptions) (*External, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := waitForSocks(ctx, opts.SocksAddr, logger); err != nil {
		return nil, fmt.Errorf("tor daemon at %s: %w", opts.SocksAddr, err)
	}

	base, err := proxy.SOCKS5("tcp", opts.SocksAddr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("socks dialer: %w", err)
	}
	dialer, ok := base.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("socks dialer does not support contexts")
	}

	ln, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", opts.ListenAddr, err)
	}

	logger.Info("using external tor daemon",
		zap.String("socks_addr", opts.SocksAddr),
		zap.String("listen_addr", ln.Addr().String()))

	return &External{
		identity: opts.Identity,
		listener: ln,
		dialer:   dialer,
		logger:   logger,
	}, nil
}

// waitForSocks probes the SOCKS port with exponential backoff until
// it accepts, the retries are exhausted, or ctx expires.
func waitForSocks(ctx context.Context, addr string, logger *zap.Logger) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 250 * time.Millisecond

	probe := func() (struct{}, error) {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err != nil {
			return struct{}{}, err
		}
		conn.Close()
		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, probe,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(10),
		backoff.WithNotify(func(err error, d time.Duration) {
			logger.Debug("tor socks port not ready",
				zap.Error(err), zap.Duration("retry_in", d))
		}),
	)
	return err
}

// Identity returns the operator-configured onion address.
func (e *External) Identity() string {
	return e.identity
}

// Dial opens a stream to a peer's onion service through the daemon's
// SOCKS proxy.
func (e *External) Dial(ctx context.Context, address string) (net.Conn, error) {
	return e.dialer.DialContext(ctx, "tcp", ensurePort(address))
}

// Listener accepts streams the daemon forwards from the onion
// service.
func (e *External) Listener() net.Listener {
	return e.listener
}

// Close stops the local listener.  The daemon itself is left alone.
func (e *External) Close() error {
	return e.listener.Close()
}
