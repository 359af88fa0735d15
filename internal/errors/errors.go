// Package errors provides domain-specific error types for metor.
//
// These types carry structured context (operation, address) that helps
// callers decide how to handle failures and provides better
// diagnostics than plain string wrapping.
package errors

import (
	"errors"
	"fmt"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	// ErrAlreadyConnected is returned when a connect attempt finds a
	// session already active.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrNotConnected is returned when an operation needs an active
	// session and there is none.
	ErrNotConnected = errors.New("no active connection")

	// ErrSelfDial is returned when the dialed address is the
	// endpoint's own identity.
	ErrSelfDial = errors.New("cannot connect to yourself")

	// ErrChatRunning is returned when an operation is refused because
	// another metor process holds the chat lock.
	ErrChatRunning = errors.New("a chat session is already running")
)

// ── Structured error types ───────────────────────────────────────────

// NetworkError represents a failure in a transport operation.
type NetworkError struct {
	Op   string // operation: "dial", "listen", "handshake", "send"
	Addr string // identity or network address involved
	Err  error  // underlying error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: %s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError for the given operation and address.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{Op: op, Addr: addr, Err: err}
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use metor/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
