package ports

import "github.com/ralphtown/ralphtown/internal/domain"

// Broadcaster fans a message out to the live subscribers of a session.
// Implementations must be safe for concurrent use and must never block
// the caller.
type Broadcaster interface {
	Broadcast(sessionID string, msg domain.ServerMessage)
}

// Subscriber attaches live consumers to a session's event feed. The
// returned function detaches the subscription and must be called
// exactly once.
type Subscriber interface {
	Subscribe(sessionID string) (<-chan domain.ServerMessage, func())
}

// EventHub is the composite fan-out interface
type EventHub interface {
	Broadcaster
	Subscriber
	SubscriberCount(sessionID string) int
	Close()
}
