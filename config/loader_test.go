package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DerWahreMirakulix/metor/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	// Point the data dir at an empty temp dir so no stray config file
	// on the build host leaks into the test.
	t.Setenv("METOR_DATA_DIR", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, TransportTor, cfg.Transport)
	assert.Equal(t, DefaultSocksAddr, cfg.SocksAddr)
	assert.Equal(t, DefaultDialTimeout, cfg.DialTimeout)
	assert.Equal(t, DefaultHandshakeTimeout, cfg.HandshakeTimeout)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
transport: direct
listen_addr: 127.0.0.1:9999
dial_timeout: 3s
log_level: debug
data_dir: ` + dir + `
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, TransportDirect, cfg.Transport)
	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, 3*time.Second, cfg.DialTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultHandshakeTimeout, cfg.HandshakeTimeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("METOR_DATA_DIR", t.TempDir())
	t.Setenv("METOR_TRANSPORT", "direct")
	t.Setenv("METOR_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, TransportDirect, cfg.Transport)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
transport: smoke-signals
data_dir: ` + dir + `
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	_, err := Load(path)
	require.Error(t, err)

	var cerr *errors.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "transport", cerr.Field)
}
