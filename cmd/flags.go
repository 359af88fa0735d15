package cmd

import (
	flag "github.com/spf13/pflag"

	"github.com/DerWahreMirakulix/metor/config"
)

// configOverrides holds flag values that override the loaded
// configuration.  Only flags the user actually set are applied, so
// file and environment settings survive untouched defaults.
type configOverrides struct {
	transport  string
	dataDir    string
	listenAddr string
	socksAddr  string
	identity   string
	torPath    string
	logLevel   string
}

func bindConfigFlags(fs *flag.FlagSet, o *configOverrides) {
	fs.StringVar(&o.transport, "transport", "", `Transport: "tor", "external", or "direct"`)
	fs.StringVar(&o.dataDir, "data-dir", "", "Data directory (key, history, logs)")
	fs.StringVar(&o.listenAddr, "listen-addr", "", "Local listen address (external/direct transports)")
	fs.StringVar(&o.socksAddr, "socks-addr", "", "SOCKS5 address of a running Tor daemon (external transport)")
	fs.StringVar(&o.identity, "identity", "", "Published onion address (external transport)")
	fs.StringVar(&o.torPath, "tor-path", "", "Path to the tor binary (tor transport)")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, or error")
}

func (o *configOverrides) apply(fs *flag.FlagSet, cfg *config.Config) error {
	if fs.Changed("transport") {
		cfg.Transport = o.transport
	}
	if fs.Changed("data-dir") {
		cfg.DataDir = o.dataDir
	}
	if fs.Changed("listen-addr") {
		cfg.ListenAddr = o.listenAddr
	}
	if fs.Changed("socks-addr") {
		cfg.SocksAddr = o.socksAddr
	}
	if fs.Changed("identity") {
		cfg.Identity = o.identity
	}
	if fs.Changed("tor-path") {
		cfg.TorPath = o.torPath
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	return cfg.Validate()
}
