// Package terminal implements the interactive chat surface: a
// raw-mode line editor with colored message prefixes that doubles as
// the session engine's event sink.
//
// When stdin or stdout is not a TTY the surface degrades to plain
// line-buffered reads and uncolored output, which keeps piped and
// scripted invocations working.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/DerWahreMirakulix/metor/internal/chat"
	"github.com/DerWahreMirakulix/metor/internal/errors"
)

// ErrInterrupt is returned by ReadLine when the user presses Ctrl-C
// in raw mode.  Raw mode disables signal generation, so interrupt
// handling falls to the reader.
var ErrInterrupt = errors.New("interrupted")

const prompt = "> "

// Help is the chat-mode command summary.
const Help = `Chat mode commands:
  /connect [onion] [--anonymous/-a]   Connect to a remote peer
  /end                                End the current connection
  /clear                              Clear the chat display
  /exit                               Exit chat mode
  /help                               Show this help`

// UI is the interactive chat surface.
type UI struct {
	tty      *term.Terminal // nil in fallback mode
	oldState *term.State
	stdinFd  int

	scanner *bufio.Scanner // fallback line source

	mu  sync.Mutex
	out io.Writer
}

var _ chat.Sink = (*UI)(nil)

// New prepares the terminal.  In a TTY, stdin enters raw mode; call
// Restore before the process exits or the shell is left unusable.
func New() (*UI, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return &UI{
			scanner: bufio.NewScanner(os.Stdin),
			out:     os.Stdout,
		}, nil
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}

	screen := struct {
		io.Reader
		io.Writer
	}{&interruptReader{r: os.Stdin}, os.Stdout}

	t := term.NewTerminal(screen, prompt)
	if w, h, err := term.GetSize(fd); err == nil {
		t.SetSize(w, h) //nolint:errcheck
	}

	return &UI{tty: t, oldState: oldState, stdinFd: fd, out: os.Stdout}, nil
}

// Restore leaves raw mode.  Safe to call in fallback mode.
func (u *UI) Restore() {
	if u.oldState != nil {
		term.Restore(u.stdinFd, u.oldState) //nolint:errcheck
	}
}

// ReadLine blocks for the next input line.  In raw mode Ctrl-C yields
// ErrInterrupt and Ctrl-D on an empty line yields io.EOF; the
// terminal's own history and arrow-key editing apply.
func (u *UI) ReadLine() (string, error) {
	if u.tty != nil {
		return u.tty.ReadLine()
	}
	if !u.scanner.Scan() {
		if err := u.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return u.scanner.Text(), nil
}

// Push renders an engine event above the prompt: green "self>", blue
// "other>", yellow "info>".
func (u *UI) Push(ev chat.Event) {
	u.mu.Lock()
	defer u.mu.Unlock()

	prefix := ev.Kind.String() + ">"
	if u.tty == nil {
		fmt.Fprintf(u.out, "%s %s\n", prefix, ev.Text)
		return
	}

	e := u.tty.Escape
	var color []byte
	switch ev.Kind {
	case chat.EventSelf:
		color = e.Green
	case chat.EventRemote:
		color = e.Blue
	default:
		color = e.Yellow
	}
	u.writeTTY(string(color) + prefix + string(e.Reset) + " " + ev.Text)
}

// Printf writes a formatted line of plain output, outside the event
// stream.
func (u *UI) Printf(format string, args ...interface{}) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s := fmt.Sprintf(format, args...)
	if u.tty == nil {
		fmt.Fprintln(u.out, s)
		return
	}
	u.writeTTY(s)
}

// PrintHelp writes the chat-mode command summary.
func (u *UI) PrintHelp() {
	u.Printf("%s", Help)
}

// Clear wipes the screen and homes the cursor.
func (u *UI) Clear() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.tty == nil {
		fmt.Fprint(u.out, "\x1b[2J\x1b[H")
		return
	}
	u.tty.Write([]byte("\x1b[2J\x1b[H")) //nolint:errcheck
}

// writeTTY emits one logical line through the terminal, which redraws
// the prompt and any partial input underneath.  Raw mode does no
// output processing, so line breaks must be CRLF.
func (u *UI) writeTTY(s string) {
	s = strings.ReplaceAll(s, "\n", "\r\n")
	u.tty.Write([]byte(s + "\r\n")) //nolint:errcheck
}

// interruptReader passes stdin through and turns the raw-mode Ctrl-C
// byte into ErrInterrupt.  Input buffered before the interrupt is
// dropped, cancelling the half-typed line.
type interruptReader struct {
	r io.Reader
}

func (ir *interruptReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	for i := 0; i < n; i++ {
		if p[i] == 0x03 {
			return 0, ErrInterrupt
		}
	}
	return n, err
}
