package listener

type Event struct {
	Type EventType
	// Reply receives the one-line answer written back to the client. The
	// listener always provides a buffered channel, so answering never blocks.
	Reply chan<- string
}

// EventType is the wire message a client sends.
type EventType string

const (
	EnableEvent  EventType = "ENABLE"
	DisableEvent EventType = "DISABLE"
	StatusEvent  EventType = "STATUS"
	CheckEvent   EventType = "CHECK"
)

func parseEventType(msg string) (EventType, bool) {
	switch et := EventType(msg); et {
	case EnableEvent, DisableEvent, StatusEvent, CheckEvent:
		return et, true
	default:
		return "", false
	}
}
