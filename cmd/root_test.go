package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DerWahreMirakulix/metor/config"
	"github.com/DerWahreMirakulix/metor/internal/errors"
	"github.com/DerWahreMirakulix/metor/internal/history"
	"github.com/DerWahreMirakulix/metor/internal/identity"
)

// runCmd executes the CLI against an isolated data directory and
// returns its combined output.
func runCmd(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("METOR_DATA_DIR", dir)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseConnect(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantAddr string
		wantAnon bool
		wantOK   bool
	}{
		{"address only", "/connect abc.onion", "abc.onion", false, true},
		{"long flag after", "/connect abc.onion --anonymous", "abc.onion", true, true},
		{"short flag before", "/connect -a abc.onion", "abc.onion", true, true},
		{"no address", "/connect", "", false, false},
		{"flag without address", "/connect --anonymous", "", true, false},
		{"extra words ignored", "/connect abc def", "abc", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, anon, ok := parseConnect(tt.line)
			assert.Equal(t, tt.wantAddr, addr)
			assert.Equal(t, tt.wantAnon, anon)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "metor "+version+" ("), "got %q", out)
	assert.Contains(t, out, runtime.GOOS)
}

func TestHistoryCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := runCmd(t, dir, "history")
	require.NoError(t, err)
	assert.Equal(t, "No history available.\n", out)

	log := history.New(filepath.Join(dir, "history.log"))
	require.NoError(t, log.Record(history.Out, history.Connected, "peer.onion"))
	require.NoError(t, log.Record(history.In, history.Disconnected, "peer.onion"))

	out, err = runCmd(t, dir, "history", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "out connected peer.onion")
	assert.Contains(t, out, "in disconnected peer.onion")
	// Latest first.
	assert.Less(t, strings.Index(out, "disconnected"), strings.Index(out, "connected"))

	out, err = runCmd(t, dir, "history", "clear")
	require.NoError(t, err)
	assert.Equal(t, "History cleared.\n", out)

	out, err = runCmd(t, dir, "history")
	require.NoError(t, err)
	assert.Equal(t, "No history available.\n", out)
}

func TestAddressShowCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := runCmd(t, dir, "address", "show")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Current onion address: "), "got %q", out)

	addr := strings.TrimSpace(strings.TrimPrefix(out, "Current onion address: "))
	require.NoError(t, identity.Validate(addr))

	// The key is persisted, so a second run reports the same address.
	again, err := runCmd(t, dir, "address", "show")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestAddressGenerateCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := runCmd(t, dir, "address", "show")
	require.NoError(t, err)
	before := strings.TrimSpace(strings.TrimPrefix(out, "Current onion address: "))

	out, err = runCmd(t, dir, "address", "generate")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "New onion address generated: "), "got %q", out)

	after := strings.TrimSpace(strings.TrimPrefix(out, "New onion address generated: "))
	require.NoError(t, identity.Validate(after))
	assert.NotEqual(t, before, after)

	out, err = runCmd(t, dir, "address", "show")
	require.NoError(t, err)
	assert.Contains(t, out, after)
}

func TestAddressGenerateCmd_RefusedDuringChat(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.DataDir = dir
	require.NoError(t, cfg.AcquireLock())
	defer cfg.ReleaseLock() //nolint:errcheck

	_, err := runCmd(t, dir, "address", "generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "while a chat is running")

	// The key must be untouched by the refused rotation.
	_, statErr := os.Stat(filepath.Join(dir, "onion.key"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFlagOverrides_DataDir(t *testing.T) {
	envDir := t.TempDir()
	flagDir := t.TempDir()

	_, err := runCmd(t, envDir, "address", "show", "--data-dir", flagDir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(flagDir, "onion.key"))
	assert.NoError(t, err, "key should live in the flag-selected directory")
	_, err = os.Stat(filepath.Join(envDir, "onion.key"))
	assert.True(t, os.IsNotExist(err))
}

func TestFlagOverrides_InvalidValue(t *testing.T) {
	_, err := runCmd(t, t.TempDir(), "history", "--transport", "smoke-signals")
	require.Error(t, err)

	var cerr *errors.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "transport", cerr.Field)
}

func TestExecute_UnknownFlag(t *testing.T) {
	t.Setenv("METOR_DATA_DIR", t.TempDir())
	err := Execute(context.Background(), []string{"--nonexistent-flag"})
	require.Error(t, err)
}
