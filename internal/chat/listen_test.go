package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DerWahreMirakulix/metor/internal/protocol"
	"github.com/DerWahreMirakulix/metor/internal/transport"
)

func TestHandleInbound_HandshakeDegradation(t *testing.T) {
	a := newEndpoint(t)

	conn, err := net.Dial("tcp", a.addr)
	require.NoError(t, err)
	defer conn.Close()

	// Send nothing: the handshake read times out and the session is
	// still established, as anonymous.
	waitFor(t, func() bool { return a.sink.has(EventInfo, "connected with anonymous") })
	assert.True(t, a.mgr.IsConnected())
	assert.True(t, a.rec.has("in connected anonymous"))

	remote, ok := a.mgr.Remote()
	require.True(t, ok)
	assert.Equal(t, protocol.Anonymous, remote)
}

func TestHandleInbound_MalformedHandshake(t *testing.T) {
	a := newEndpoint(t)

	conn, err := net.Dial("tcp", a.addr)
	require.NoError(t, err)
	defer conn.Close()

	// A first line that is not "/init <identity>" degrades to
	// anonymous; the line itself is swallowed, not shown as chat.
	_, err = io.WriteString(conn, "hello there\n")
	require.NoError(t, err)

	waitFor(t, func() bool { return a.sink.has(EventInfo, "connected with anonymous") })
	assert.False(t, a.sink.has(EventRemote, "hello there"))
}

func TestHandleInbound_RejectWhileBusy(t *testing.T) {
	a := newEndpoint(t)
	b := newEndpoint(t)
	require.NoError(t, a.mgr.Connect(context.Background(), b.addr, false))

	visitor, err := net.Dial("tcp", a.addr)
	require.NoError(t, err)
	defer visitor.Close()
	_, err = io.WriteString(visitor, protocol.FormatInit("visitor"))
	require.NoError(t, err)

	// The visitor receives exactly one reject line, then the close.
	require.NoError(t, visitor.SetReadDeadline(time.Now().Add(3*time.Second)))
	br := bufio.NewReader(visitor)
	line, err := br.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, protocol.FormatReject(a.addr), line)
	_, err = br.ReadByte()
	assert.ErrorIs(t, err, io.EOF)

	waitFor(t, func() bool { return a.sink.has(EventInfo, "visitor incoming - rejected") })
	assert.True(t, a.rec.has("in rejected visitor"))

	// The original session is unaffected.
	assert.True(t, a.mgr.IsConnected())
	require.NoError(t, a.mgr.Send("still here"))
	waitFor(t, func() bool { return b.sink.has(EventRemote, "still here") })
}

func TestHandleInbound_SingleSessionInvariant(t *testing.T) {
	a := newEndpoint(t)

	// A burst of concurrent inbound streams resolves to one session;
	// every other dialer is told off with a reject line.
	const attempts = 8
	var wg sync.WaitGroup
	rejects := make(chan string, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn, err := net.Dial("tcp", a.addr)
			if err != nil {
				return
			}
			defer conn.Close()
			io.WriteString(conn, protocol.FormatInit(fmt.Sprintf("peer%d", i))) //nolint:errcheck
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))               //nolint:errcheck
			line, err := bufio.NewReader(conn).ReadString('\n')
			if err == nil {
				rejects <- line
			}
		}(i)
	}
	wg.Wait()
	close(rejects)

	var rejected int
	for line := range rejects {
		assert.Equal(t, protocol.FormatReject(a.addr), line)
		rejected++
	}
	assert.Equal(t, attempts-1, rejected)
	assert.True(t, a.mgr.IsConnected())
	assert.Equal(t, attempts-1, a.rec.countPrefix("in rejected"))
	assert.Equal(t, 1, a.rec.countPrefix("in connected"))
}

func TestServe_StopsOnCancel(t *testing.T) {
	p, err := transport.NewDirect("127.0.0.1:0")
	require.NoError(t, err)
	defer p.Close()

	m := NewManager(Options{Transport: p, Logger: zaptest.NewLogger(t)})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
