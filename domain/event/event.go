// Package event defines the outbound events the hub pushes to
// connected clients. Each event knows the frame name it travels
// under; the transport layer only marshals, it never decides.
package event

import (
	"chat-hub/domain"
)

// Name is the wire-level frame name of an outbound event.
type Name string

const (
	NameUserList       Name = "user_list"
	NameUserJoined     Name = "user_joined"
	NameUserLeft       Name = "user_left"
	NameReceiveMessage Name = "receive_message"
	NamePrivateMessage Name = "private_message"
	NameTypingUsers    Name = "typing_users"
	NameError          Name = "error"
)

// DomainEvent is anything the hub can push to a client.
type DomainEvent interface {
	EventName() Name
}

// PresenceList carries the full presence snapshot, insertion order.
type PresenceList struct {
	Users []domain.PresenceRecord `json:"users"`
}

func (PresenceList) EventName() Name { return NameUserList }

// UserJoined notifies that a single connection picked a username.
type UserJoined struct {
	User domain.PresenceRecord `json:"user"`
}

func (UserJoined) EventName() Name { return NameUserJoined }

// UserLeft notifies that a named connection disconnected.
type UserLeft struct {
	User domain.PresenceRecord `json:"user"`
}

func (UserLeft) EventName() Name { return NameUserLeft }

// MessageReceived delivers a global, room, or system message.
type MessageReceived struct {
	domain.Message
}

func (MessageReceived) EventName() Name { return NameReceiveMessage }

// PrivateDelivered delivers a private message to its recipient
// and echoes it back to the sender.
type PrivateDelivered struct {
	domain.Message
}

func (PrivateDelivered) EventName() Name { return NamePrivateMessage }

// TypingList carries the usernames currently typing in one scope.
// Room is empty for the global scope.
type TypingList struct {
	Room  string   `json:"room,omitempty"`
	Users []string `json:"users"`
}

func (TypingList) EventName() Name { return NameTypingUsers }

// Rejected reports a validation failure back to the connection that
// caused it. It is never broadcast.
type Rejected struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (Rejected) EventName() Name { return NameError }
