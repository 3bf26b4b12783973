package domain

import "context"

type EventKind string

const (
	EventCreated EventKind = "created"
	EventRead    EventKind = "read"
	EventReadAll EventKind = "read_all"
)

// Event is pushed to connected clients after every successful mutation.
type Event struct {
	Kind         EventKind     `json:"kind"`
	Notification *Notification `json:"notification,omitempty"`
	UnreadCount  int           `json:"unread_count"`
	// Origin identifies the instance that produced the event so relays can
	// skip their own messages.
	Origin string `json:"origin,omitempty"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
