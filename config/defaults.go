package config

import (
	"os"
	"path/filepath"
	"time"
)

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultTransport is the embedded tor process.
	DefaultTransport = TransportTor

	// DefaultSocksAddr is tor's conventional SOCKS5 endpoint, used by
	// the external transport.
	DefaultSocksAddr = "127.0.0.1:9050"

	// DefaultListenAddr is where inbound streams arrive for the
	// external and direct transports.
	DefaultListenAddr = "127.0.0.1:4004"

	// DefaultDialTimeout bounds an outbound connect attempt.
	DefaultDialTimeout = 10 * time.Second

	// DefaultHandshakeTimeout bounds the wait for a peer's opening
	// identity line.
	DefaultHandshakeTimeout = 5 * time.Second

	// DefaultLogLevel is the debug log's level.
	DefaultLogLevel = "info"
)

// DefaultDataDir returns the per-user data directory.
func DefaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".metor"
	}
	return filepath.Join(base, "metor")
}

// Default returns a Config populated with the default values.
func Default() *Config {
	return &Config{
		Transport:        DefaultTransport,
		SocksAddr:        DefaultSocksAddr,
		ListenAddr:       DefaultListenAddr,
		DialTimeout:      DefaultDialTimeout,
		HandshakeTimeout: DefaultHandshakeTimeout,
		DataDir:          DefaultDataDir(),
		LogLevel:         DefaultLogLevel,
	}
}

// EnsureDataDir creates the data directory with owner-only access.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o700)
}
