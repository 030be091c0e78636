// Package domain contains core concepts of the chat hub.
// This file defines Connection identity and presence records.
// No runtime, network, or UI logic should be added here.
package domain

// ConnectionID is the opaque, server-assigned identifier of one live
// transport session. It is unique for the lifetime of that session.
type ConnectionID string

// PresenceRecord is the public view of a connection: its id and the
// username chosen at join time. Username stays empty while the
// connection is still anonymous.
type PresenceRecord struct {
	ID       ConnectionID `json:"id"`
	Username string       `json:"username"`
}

// Named reports whether the connection has completed user_join.
func (p PresenceRecord) Named() bool {
	return p.Username != ""
}
