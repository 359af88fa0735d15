package config

// loader.go - configuration loading.
//
// Precedence order (highest wins):
//   1. CLI flags  (bound in cmd/)
//   2. Environment variables  (METOR_*)
//   3. Config file  (config.yaml in the data directory)
//   4. Defaults  (defaults.go)

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from path (if non-empty), otherwise from
// config.yaml in the data directory.  Environment variables use the
// METOR prefix with `.`/`-` replaced by `_`, for example
// METOR_LOG_LEVEL=debug.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("METOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Seed defaults into viper so env-only configs work.
	v.SetDefault("transport", cfg.Transport)
	v.SetDefault("tor_path", cfg.TorPath)
	v.SetDefault("socks_addr", cfg.SocksAddr)
	v.SetDefault("identity", cfg.Identity)
	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("dial_timeout", cfg.DialTimeout)
	v.SetDefault("handshake_timeout", cfg.HandshakeTimeout)
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("verbose", cfg.Verbose)

	if path == "" {
		if envPath := os.Getenv("METOR_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		// GetString sees the env override, so METOR_DATA_DIR also
		// moves the config search path.
		v.SetConfigName("config")
		v.AddConfigPath(v.GetString("data_dir"))
	}

	// A missing config file is fine when none was named explicitly;
	// defaults and env still apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
