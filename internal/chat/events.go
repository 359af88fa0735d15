package chat

// EventKind classifies an event pushed to the Sink.
type EventKind int

const (
	// EventSelf echoes a message the local user sent.
	EventSelf EventKind = iota
	// EventRemote carries a chat line received from the peer.
	EventRemote
	// EventInfo carries connection-state notices.
	EventInfo
)

func (k EventKind) String() string {
	switch k {
	case EventSelf:
		return "self"
	case EventRemote:
		return "other"
	default:
		return "info"
	}
}

// Event is one item of UI-visible output.  Text carries no prefix or
// color; presentation is the sink's business.
type Event struct {
	Kind EventKind
	Text string
}

// Sink receives events from the session engine.  Push is called from
// the engine's own goroutines and must not block for long — a stalled
// sink stalls message delivery.
type Sink interface {
	Push(ev Event)
}
