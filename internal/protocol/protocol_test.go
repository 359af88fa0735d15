package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		kind     Kind
		identity string
	}{
		{
			name:     "init",
			line:     "/init abcdef.onion",
			kind:     KindInit,
			identity: "abcdef.onion",
		},
		{
			name:     "init anonymous",
			line:     "/init anonymous",
			kind:     KindInit,
			identity: "anonymous",
		},
		{
			name:     "reject",
			line:     "/reject busy.onion",
			kind:     KindReject,
			identity: "busy.onion",
		},
		{
			name:     "disconnect",
			line:     "/disconnect peer.onion",
			kind:     KindDisconnect,
			identity: "peer.onion",
		},
		{
			name:     "identity with extra spacing",
			line:     "/init   padded.onion",
			kind:     KindInit,
			identity: "padded.onion",
		},
		{
			name: "plain chat",
			line: "hello there",
			kind: KindChat,
		},
		{
			name: "empty line",
			line: "",
			kind: KindChat,
		},
		{
			// The trailing space is part of the command prefix.
			name: "bare disconnect is chat",
			line: "/disconnect",
			kind: KindChat,
		},
		{
			name: "bare init is chat",
			line: "/init",
			kind: KindChat,
		},
		{
			name: "unknown slash command is chat",
			line: "/shrug whatever",
			kind: KindChat,
		},
		{
			name: "commands are case-sensitive",
			line: "/INIT shouty.onion",
			kind: KindChat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Parse(tt.line)
			assert.Equal(t, tt.kind, msg.Kind)
			assert.Equal(t, tt.identity, msg.Identity)
			assert.Equal(t, tt.line, msg.Text, "Text must carry the raw line")
		})
	}
}

// A chat message that begins with a command prefix parses as a
// command.  The wire format has no escaping, so this ambiguity is
// inherent; callers must not rely on such lines arriving as chat.
func TestParse_PrefixAmbiguity(t *testing.T) {
	msg := Parse("/init is how the handshake starts")
	assert.Equal(t, KindInit, msg.Kind)
	assert.Equal(t, "is how the handshake starts", msg.Identity)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "/init me.onion\n", FormatInit("me.onion"))
	assert.Equal(t, "/reject me.onion\n", FormatReject("me.onion"))
	assert.Equal(t, "/disconnect me.onion\n", FormatDisconnect("me.onion"))
	assert.Equal(t, "hi\n", FormatChat("hi"))
}

func TestFormat_RoundTrip(t *testing.T) {
	for _, format := range []struct {
		fn   func(string) string
		kind Kind
	}{
		{FormatInit, KindInit},
		{FormatReject, KindReject},
		{FormatDisconnect, KindDisconnect},
	} {
		line := strings.TrimSpace(format.fn("peer.onion"))
		msg := Parse(line)
		assert.Equal(t, format.kind, msg.Kind)
		assert.Equal(t, "peer.onion", msg.Identity)
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "chat", KindChat.String())
	assert.Equal(t, "init", KindInit.String())
	assert.Equal(t, "reject", KindReject.String())
	assert.Equal(t, "disconnect", KindDisconnect.String())
}
