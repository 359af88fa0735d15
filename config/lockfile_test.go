package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DerWahreMirakulix/metor/internal/errors"
)

func testLockConfig(t *testing.T) *Config {
	t.Helper()
	cfg := Default()
	cfg.DataDir = t.TempDir()
	return cfg
}

func TestAcquireLock(t *testing.T) {
	cfg := testLockConfig(t)

	require.NoError(t, cfg.AcquireLock())
	assert.True(t, cfg.ChatRunning())

	// A second holder is refused while the lock exists.
	err := cfg.AcquireLock()
	require.ErrorIs(t, err, errors.ErrChatRunning)

	require.NoError(t, cfg.ReleaseLock())
	assert.False(t, cfg.ChatRunning())

	// Released locks can be taken again.
	require.NoError(t, cfg.AcquireLock())
	require.NoError(t, cfg.ReleaseLock())
}

func TestAcquireLock_WritesPID(t *testing.T) {
	cfg := testLockConfig(t)

	require.NoError(t, cfg.AcquireLock())
	defer cfg.ReleaseLock()

	data, err := os.ReadFile(cfg.LockFile())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestAcquireLock_CreatesDataDir(t *testing.T) {
	cfg := Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "nested", "dir")

	require.NoError(t, cfg.AcquireLock())
	defer cfg.ReleaseLock()

	info, err := os.Stat(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestReleaseLock_NotHeld(t *testing.T) {
	cfg := testLockConfig(t)

	// Releasing a lock nobody holds is not an error.
	assert.NoError(t, cfg.ReleaseLock())
}
