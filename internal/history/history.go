// Package history persists connection events to an append-only log.
//
// Each event is one line:
//
//	[2006-01-02 15:04:05] <in|out> <connected|rejected|disconnected> <identity>
//
// The chat engine only ever appends; reading and clearing exist for
// the CLI's history commands.  Message content is never recorded,
// only connection-state transitions.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Direction says which side initiated the recorded event.
type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// Status is the connection-state transition being recorded.
type Status string

const (
	Connected    Status = "connected"
	Rejected     Status = "rejected"
	Disconnected Status = "disconnected"
)

// Recorder is the write-only view of the log used by the chat engine.
type Recorder interface {
	Record(dir Direction, status Status, identity string) error
}

// Log is a file-backed [Recorder].
type Log struct {
	mu   sync.Mutex
	path string
}

var _ Recorder = (*Log)(nil)

// New returns a Log appending to the file at path.  The file is
// created on first write.
func New(path string) *Log {
	return &Log{path: path}
}

// Record appends one event line.
func (l *Log) Record(dir Direction, status Status, identity string) error {
	stamp := time.Now().Format("2006-01-02 15:04:05")
	line := fmt.Sprintf("[%s] %s %s %s\n", stamp, dir, status, identity)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read returns all recorded lines, most recent first.  A log that was
// never written yields an empty result.
func (l *Log) Read() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	out := make([]string, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] != "" {
			out = append(out, lines[i])
		}
	}
	return out, nil
}

// Clear truncates the log.  Clearing a log that was never written is
// not an error.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := os.Truncate(l.path, 0)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
