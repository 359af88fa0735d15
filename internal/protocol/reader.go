package protocol

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

// MaxLineLen bounds a single protocol line.  A peer streaming bytes
// without a newline would otherwise grow the read buffer without
// limit.
const MaxLineLen = 64 * 1024

// ErrLineTooLong is returned when a peer sends a line exceeding
// [MaxLineLen].  The stream is unusable afterwards.
var ErrLineTooLong = errors.New("protocol: line too long")

// LineReader reads newline-terminated protocol lines from a
// connection.  It buffers internally, so exactly one LineReader must
// exist per connection and every read on the connection, including
// the handshake, must go through it.
type LineReader struct {
	conn net.Conn
	br   *bufio.Reader
}

// NewLineReader wraps conn for line-at-a-time reading.
func NewLineReader(conn net.Conn) *LineReader {
	return &LineReader{conn: conn, br: bufio.NewReader(conn)}
}

// ReadLine blocks until a full line arrives and returns it with
// surrounding whitespace (including the newline) trimmed.  An
// unterminated trailing line is returned before the io.EOF that
// follows it.
func (r *LineReader) ReadLine() (string, error) {
	var line []byte
	for {
		frag, err := r.br.ReadSlice('\n')
		line = append(line, frag...)
		if len(line) > MaxLineLen {
			return "", ErrLineTooLong
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) && len(line) > 0 {
			break
		}
		return "", err
	}
	return strings.TrimSpace(string(line)), nil
}

// ReadLineTimeout is ReadLine bounded by d.  The read deadline is
// cleared afterwards so that later reads block indefinitely again.
func (r *LineReader) ReadLineTimeout(d time.Duration) (string, error) {
	if err := r.conn.SetReadDeadline(time.Now().Add(d)); err != nil {
		return "", err
	}
	defer r.conn.SetReadDeadline(time.Time{})
	return r.ReadLine()
}
