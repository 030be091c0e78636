package domain

import "time"

// TypingEntry records that one connection is currently typing.
// Room is empty for the global scope. An absent entry and a cleared
// entry are the same thing: not typing.
type TypingEntry struct {
	Username string
	Room     string
	Since    time.Time
}
