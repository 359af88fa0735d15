// Package config defines the runtime configuration for metor and the
// layout of its data directory.
package config

import (
	"net"
	"path/filepath"
	"time"

	"github.com/DerWahreMirakulix/metor/internal/errors"
	"github.com/DerWahreMirakulix/metor/internal/identity"
)

// Transport selection values.
const (
	// TransportTor runs an embedded tor process.
	TransportTor = "tor"
	// TransportExternal uses an operator-managed tor daemon.
	TransportExternal = "external"
	// TransportDirect is plain TCP, for development and tests.
	TransportDirect = "direct"
)

// Config holds every tuneable for a metor endpoint.
type Config struct {
	// ── Transport ────────────────────────────────────────────────────
	Transport  string `mapstructure:"transport"`   // "tor", "external", or "direct"
	TorPath    string `mapstructure:"tor_path"`    // tor binary for the embedded transport
	SocksAddr  string `mapstructure:"socks_addr"`  // external daemon's SOCKS5 endpoint
	Identity   string `mapstructure:"identity"`    // published onion address (external)
	ListenAddr string `mapstructure:"listen_addr"` // inbound address (external/direct)

	// ── Session ──────────────────────────────────────────────────────
	DialTimeout      time.Duration `mapstructure:"dial_timeout"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`

	// ── Paths ────────────────────────────────────────────────────────
	DataDir string `mapstructure:"data_dir"`

	// ── Output ───────────────────────────────────────────────────────
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"` // empty = <data-dir>/metor.log
	Verbose  bool   `mapstructure:"verbose"`
}

// ── Data directory layout ────────────────────────────────────────────

// KeyFile is the persistent onion key location.
func (c *Config) KeyFile() string { return filepath.Join(c.DataDir, "onion.key") }

// HistoryFile is the connection event log.
func (c *Config) HistoryFile() string { return filepath.Join(c.DataDir, "history.log") }

// LockFile guards against concurrent chat sessions.
func (c *Config) LockFile() string { return filepath.Join(c.DataDir, "chat.lock") }

// TorDir is the embedded tor process's working directory.
func (c *Config) TorDir() string { return filepath.Join(c.DataDir, "tor") }

// DebugLogFile is where the debug log is written.
func (c *Config) DebugLogFile() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "metor.log")
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportTor:
		// The embedded transport mints its own identity and listener.
	case TransportExternal:
		if c.Identity == "" {
			return &errors.ConfigError{
				Field:   "identity",
				Message: "the external transport needs the published onion address",
				Hint:    "set identity in config.yaml or METOR_IDENTITY",
			}
		}
		if err := identity.Validate(c.Identity); err != nil {
			return &errors.ConfigError{
				Field:   "identity",
				Value:   c.Identity,
				Message: err.Error(),
			}
		}
		if _, _, err := net.SplitHostPort(c.SocksAddr); err != nil {
			return &errors.ConfigError{
				Field:   "socks_addr",
				Value:   c.SocksAddr,
				Message: "not a host:port",
				Hint:    "tor's default is 127.0.0.1:9050",
			}
		}
	case TransportDirect:
	default:
		return &errors.ConfigError{
			Field:   "transport",
			Value:   c.Transport,
			Message: "unknown transport",
			Hint:    `one of "tor", "external", "direct"`,
		}
	}

	if c.Transport != TransportTor {
		if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
			return &errors.ConfigError{
				Field:   "listen_addr",
				Value:   c.ListenAddr,
				Message: "not a host:port",
			}
		}
	}

	if c.DialTimeout <= 0 {
		return &errors.ConfigError{
			Field:   "dial_timeout",
			Value:   c.DialTimeout,
			Message: "must be positive",
		}
	}
	if c.HandshakeTimeout <= 0 {
		return &errors.ConfigError{
			Field:   "handshake_timeout",
			Value:   c.HandshakeTimeout,
			Message: "must be positive",
		}
	}

	if c.DataDir == "" {
		return &errors.ConfigError{
			Field:   "data_dir",
			Message: "must not be empty",
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &errors.ConfigError{
			Field:   "log_level",
			Value:   c.LogLevel,
			Message: "unknown log level",
			Hint:    `one of "debug", "info", "warn", "error"`,
		}
	}

	return nil
}
