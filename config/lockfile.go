package config

// lockfile.go - the chat.lock single-instance guard.
//
// A chat session holds the lock for its lifetime.  Operations that
// must not run concurrently with a session (rotating the onion key)
// refuse while the lock exists.

import (
	"fmt"
	"os"

	"github.com/DerWahreMirakulix/metor/internal/errors"
)

// AcquireLock takes the chat lock, failing with ErrChatRunning when
// another process already holds it.
func (c *Config) AcquireLock() error {
	if err := c.EnsureDataDir(); err != nil {
		return err
	}
	f, err := os.OpenFile(c.LockFile(), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if os.IsExist(err) {
		return errors.ErrChatRunning
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	return f.Close()
}

// ReleaseLock drops the chat lock.  Releasing a lock that is not held
// is not an error.
func (c *Config) ReleaseLock() error {
	err := os.Remove(c.LockFile())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ChatRunning reports whether a chat session holds the lock.
func (c *Config) ChatRunning() bool {
	_, err := os.Stat(c.LockFile())
	return err == nil
}
