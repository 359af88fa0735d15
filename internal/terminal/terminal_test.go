package terminal

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DerWahreMirakulix/metor/internal/chat"
)

// newFallbackUI builds a UI in non-TTY mode over in-memory streams.
func newFallbackUI(in io.Reader, out io.Writer) *UI {
	return &UI{scanner: bufio.NewScanner(in), out: out}
}

func TestUI_FallbackReadLine(t *testing.T) {
	ui := newFallbackUI(strings.NewReader("hello\nworld\n"), io.Discard)

	line, err := ui.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "hello", line)

	line, err = ui.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "world", line)

	_, err = ui.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestUI_FallbackPush(t *testing.T) {
	var out bytes.Buffer
	ui := newFallbackUI(strings.NewReader(""), &out)

	ui.Push(chat.Event{Kind: chat.EventSelf, Text: "hi"})
	ui.Push(chat.Event{Kind: chat.EventRemote, Text: "hello"})
	ui.Push(chat.Event{Kind: chat.EventInfo, Text: "connected with x"})

	want := "self> hi\nother> hello\ninfo> connected with x\n"
	assert.Equal(t, want, out.String())
	// No escape sequences outside a TTY.
	assert.NotContains(t, out.String(), "\x1b")
}

func TestUI_FallbackPrintf(t *testing.T) {
	var out bytes.Buffer
	ui := newFallbackUI(strings.NewReader(""), &out)

	ui.Printf("Your onion address: %s", "abc.onion")
	assert.Equal(t, "Your onion address: abc.onion\n", out.String())
}

func TestInterruptReader(t *testing.T) {
	r := &interruptReader{r: strings.NewReader("abc")}
	buf := make([]byte, 16)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))

	r = &interruptReader{r: strings.NewReader("ab\x03cd")}
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, ErrInterrupt)
}

func TestHelp_ListsAllCommands(t *testing.T) {
	for _, cmd := range []string{"/connect", "/end", "/clear", "/exit", "/help"} {
		assert.Contains(t, Help, cmd)
	}
}
