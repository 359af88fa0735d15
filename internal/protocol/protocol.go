// Package protocol implements the line-based wire protocol spoken
// between two chat endpoints.
//
// Every message is a single UTF-8 line terminated by '\n'.  Three
// control commands exist: "/init <identity>" announces the sender's
// identity after dialing, "/reject <identity>" refuses an inbound
// connection while another session is active, and
// "/disconnect <identity>" ends a session.  Any other line is chat
// text.  There is no escaping: a chat message that happens to begin
// with a command prefix is indistinguishable from a control line.
// This is a known limitation of the wire format, kept for
// compatibility with existing peers.
package protocol

import "strings"

// ── Message kinds ────────────────────────────────────────────────────

// Kind classifies a parsed protocol line.
type Kind int

const (
	// KindChat is plain conversation text.
	KindChat Kind = iota
	// KindInit is the identity announcement sent after dialing.
	KindInit
	// KindReject refuses an inbound connection.
	KindReject
	// KindDisconnect ends a session.
	KindDisconnect
)

func (k Kind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindReject:
		return "reject"
	case KindDisconnect:
		return "disconnect"
	default:
		return "chat"
	}
}

// Command prefixes.  The trailing space is part of the prefix: a bare
// "/disconnect" without an argument is chat text, not a command.
const (
	initPrefix       = "/init "
	rejectPrefix     = "/reject "
	disconnectPrefix = "/disconnect "
)

// Anonymous is the identity announced by peers that withhold their
// address, and the identity assumed when a handshake never arrives.
const Anonymous = "anonymous"

// Message is one decoded protocol line.
type Message struct {
	Kind     Kind
	Identity string // argument of a control command, whitespace-trimmed
	Text     string // the raw line as received
}

// ── Parsing ──────────────────────────────────────────────────────────

// Parse classifies a single line, already stripped of its newline.
// Matching is prefix-based and case-sensitive; an unrecognized
// "/"-prefixed line is ordinary chat text.
func Parse(line string) Message {
	switch {
	case strings.HasPrefix(line, initPrefix):
		return Message{Kind: KindInit, Identity: strings.TrimSpace(line[len(initPrefix):]), Text: line}
	case strings.HasPrefix(line, rejectPrefix):
		return Message{Kind: KindReject, Identity: strings.TrimSpace(line[len(rejectPrefix):]), Text: line}
	case strings.HasPrefix(line, disconnectPrefix):
		return Message{Kind: KindDisconnect, Identity: strings.TrimSpace(line[len(disconnectPrefix):]), Text: line}
	default:
		return Message{Kind: KindChat, Text: line}
	}
}

// ── Formatting ───────────────────────────────────────────────────────

// FormatInit returns the wire form of the identity announcement.
func FormatInit(identity string) string { return initPrefix + identity + "\n" }

// FormatReject returns the wire form of a connection refusal.
func FormatReject(identity string) string { return rejectPrefix + identity + "\n" }

// FormatDisconnect returns the wire form of a teardown notice.
func FormatDisconnect(identity string) string { return disconnectPrefix + identity + "\n" }

// FormatChat returns the wire form of a chat message.
func FormatChat(text string) string { return text + "\n" }
