package tor

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"net"
	"time"

	"github.com/cretz/bine/tor"
	bineed25519 "github.com/cretz/bine/torutil/ed25519"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"

	"github.com/DerWahreMirakulix/metor/internal/identity"
	"github.com/DerWahreMirakulix/metor/util"
)

// Bootstrapping and descriptor publication can take a while on slow
// or censored networks.
const bootstrapTimeout = 3 * time.Minute

// EmbeddedOptions configures an embedded tor process.
type EmbeddedOptions struct {
	ExePath string // tor binary; empty means search $PATH
	DataDir string // tor's own working directory
	KeyFile string // persistent onion key location
	Logger  *zap.Logger
}

// Embedded is a transport provider that owns a tor child process and
// a v3 onion service published through it.
type Embedded struct {
	proc     *tor.Tor
	service  *tor.OnionService
	dialer   *tor.Dialer
	identity string
	logger   *zap.Logger
}

// NewEmbedded launches tor and publishes the onion service for the
// persistent key at KeyFile (creating the key on first run).  It
// blocks through the network bootstrap; the returned provider is
// ready to dial and accept.
func NewEmbedded(ctx context.Context, opts EmbeddedOptions) (*Embedded, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	key, err := identity.LoadOrCreateKey(opts.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("onion key: %w", err)
	}
	addr := identity.FromPublicKey(key.Public().(ed25519.PublicKey))

	logger.Info("starting tor process", zap.String("data_dir", opts.DataDir))

	proc, err := tor.Start(ctx, &tor.StartConf{
		ExePath:     opts.ExePath,
		DataDir:     opts.DataDir,
		DebugWriter: &zapio.Writer{Log: logger.Named("tor"), Level: zapcore.DebugLevel},
	})
	if err != nil {
		return nil, fmt.Errorf("start tor: %w", err)
	}

	// Listen waits for the bootstrap before publishing the service.
	listenCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()

	service, err := proc.Listen(listenCtx, &tor.ListenConf{
		Version3:    true,
		Key:         bineed25519.FromCryptoPrivateKey(key),
		RemotePorts: []int{servicePort},
	})
	if err != nil {
		proc.Close()
		return nil, fmt.Errorf("publish onion service: %w", err)
	}

	if got := service.ID + ".onion"; got != addr {
		logger.Warn("published service ID differs from derived address",
			zap.String("derived", addr), zap.String("published", got))
	}

	dialer, err := proc.Dialer(ctx, nil)
	if err != nil {
		service.Close()
		proc.Close()
		return nil, fmt.Errorf("socks dialer: %w", err)
	}

	logger.Info("onion service published", zap.String("address", addr))

	return &Embedded{
		proc:     proc,
		service:  service,
		dialer:   dialer,
		identity: addr,
		logger:   logger,
	}, nil
}

// Identity returns the endpoint's onion address.
func (e *Embedded) Identity() string {
	return e.identity
}

// Dial opens a stream to a peer's onion service through the tor SOCKS
// proxy.  A bare onion address is dialed on the chat service port.
func (e *Embedded) Dial(ctx context.Context, address string) (net.Conn, error) {
	return e.dialer.DialContext(ctx, "tcp", ensurePort(address))
}

// Listener accepts streams forwarded from the onion service.
func (e *Embedded) Listener() net.Listener {
	return e.service
}

// Close unpublishes the service and stops the tor process.
func (e *Embedded) Close() error {
	var firstErr error
	if err := e.service.Close(); err != nil && !util.IsClosedErr(err) {
		firstErr = err
	}
	if err := e.proc.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
