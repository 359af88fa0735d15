package transport

import (
	"context"

	"go.uber.org/zap"

	"github.com/DerWahreMirakulix/metor/config"
	"github.com/DerWahreMirakulix/metor/internal/errors"
	"github.com/DerWahreMirakulix/metor/internal/tor"
)

// Build constructs the Provider selected by the configuration.  This
// is the single dispatch point between the CLI and the transport
// implementations.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Provider, error) {
	switch cfg.Transport {
	case config.TransportTor:
		return tor.NewEmbedded(ctx, tor.EmbeddedOptions{
			ExePath: cfg.TorPath,
			DataDir: cfg.TorDir(),
			KeyFile: cfg.KeyFile(),
			Logger:  logger,
		})
	case config.TransportExternal:
		return tor.NewExternal(ctx, tor.ExternalOptions{
			SocksAddr:  cfg.SocksAddr,
			Identity:   cfg.Identity,
			ListenAddr: cfg.ListenAddr,
			Logger:     logger,
		})
	case config.TransportDirect:
		return NewDirect(cfg.ListenAddr)
	default:
		return nil, &errors.ConfigError{
			Field:   "transport",
			Value:   cfg.Transport,
			Message: "unknown transport",
			Hint:    `one of "tor", "external", "direct"`,
		}
	}
}
