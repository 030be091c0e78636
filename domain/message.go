package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScopeKind discriminates the routing target of a message.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeRoom
	ScopePrivate
)

// Scope is the routing target of a message: everyone, one room,
// or one private recipient.
type Scope struct {
	Kind ScopeKind
	Room string
	To   ConnectionID
}

func GlobalScope() Scope {
	return Scope{Kind: ScopeGlobal}
}

func RoomScope(room string) Scope {
	return Scope{Kind: ScopeRoom, Room: room}
}

func PrivateScope(to ConnectionID) Scope {
	return Scope{Kind: ScopePrivate, To: to}
}

// Message represents an immutable chat event.
// The JSON shape is what clients receive in receive_message
// and private_message frames.
type Message struct {
	ID        uuid.UUID    `json:"id"`
	Sender    string       `json:"sender"`
	SenderID  ConnectionID `json:"senderId"`
	Body      string       `json:"message"`
	Room      string       `json:"room,omitempty"`
	Private   bool         `json:"isPrivate,omitempty"`
	System    bool         `json:"isSystem,omitempty"`
	CreatedAt time.Time    `json:"timestamp"`
}

// RoutedMessage pairs a constructed message with the recipient set
// resolved for it at routing time.
type RoutedMessage struct {
	Message    Message
	Recipients []ConnectionID
}
