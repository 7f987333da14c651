package domain

import "time"

type EventKind int

const (
	EventMessage EventKind = iota
	EventUserJoined
	EventUserLeft
)

// EventKinds lists every kind a live stream session subscribes to.
var EventKinds = []EventKind{EventMessage, EventUserJoined, EventUserLeft}

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventUserJoined:
		return "user-joined"
	case EventUserLeft:
		return "user-left"
	default:
		return "unknown"
	}
}

func (k EventKind) IsValid() bool {
	switch k {
	case EventMessage, EventUserJoined, EventUserLeft:
		return true
	default:
		return false
	}
}

type Event struct {
	Kind      EventKind
	User      string
	Message   string
	Timestamp time.Time
}

func NewMessageEvent(message ChatMessage) Event {
	return Event{
		Kind:      EventMessage,
		User:      message.User,
		Message:   message.Message,
		Timestamp: time.Now(),
	}
}

func NewUserJoinedEvent(user string) Event {
	return Event{
		Kind:      EventUserJoined,
		User:      user,
		Timestamp: time.Now(),
	}
}

func NewUserLeftEvent(user string) Event {
	return Event{
		Kind:      EventUserLeft,
		User:      user,
		Timestamp: time.Now(),
	}
}

func (e Event) ChatMessage() ChatMessage {
	return NewChatMessage(e.User, e.Message)
}

func (e Event) IsValid() bool {
	switch e.Kind {
	case EventMessage:
		return e.User != "" && e.Message != ""
	case EventUserJoined, EventUserLeft:
		return e.User != ""
	default:
		return false
	}
}

func (e Event) String() string {
	if e.Kind == EventMessage {
		return e.Kind.String() + ": " + e.User + " - " + e.Message
	}
	return e.Kind.String() + ": " + e.User
}
