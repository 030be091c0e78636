package runtime

import (
	"sync"
	"time"

	"chat-hub/domain"
)

// TypingIndex aggregates per-connection typing flags. A connection is
// either typing in exactly one scope (a room, or globally when the
// room is empty) or not present at all; "not typing" is represented
// only by absence so a stale false can never linger.
type TypingIndex struct {
	mu      sync.Mutex
	entries map[domain.ConnectionID]domain.TypingEntry
	order   []domain.ConnectionID
	now     func() time.Time
}

func NewTypingIndex() *TypingIndex {
	return &TypingIndex{
		entries: make(map[domain.ConnectionID]domain.TypingEntry),
		now:     time.Now,
	}
}

// SetTyping records or clears the typing flag for a connection.
// isTyping=false removes the entry entirely.
func (t *TypingIndex) SetTyping(id domain.ConnectionID, username string, isTyping bool, room string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !isTyping {
		t.removeLocked(id)
		return
	}

	if _, ok := t.entries[id]; !ok {
		t.order = append(t.order, id)
	}
	t.entries[id] = domain.TypingEntry{
		Username: username,
		Room:     room,
		Since:    t.now(),
	}
}

// TypingIn returns the usernames currently typing in the given scope,
// insertion order. The global scope (room == "") and every named room
// are disjoint: a connection typing in "tech" is not typing globally.
func (t *TypingIndex) TypingIn(room string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var users []string
	for _, id := range t.order {
		if e := t.entries[id]; e.Room == room {
			users = append(users, e.Username)
		}
	}
	return users
}

// Clear unconditionally removes any entry for the connection and
// returns what was removed, so the caller can rebroadcast the
// affected scope.
func (t *TypingIndex) Clear(id domain.ConnectionID) (domain.TypingEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if ok {
		t.removeLocked(id)
	}
	return e, ok
}

// Expire evicts entries older than ttl and returns the distinct
// scopes that changed. Clients normally clear their own flag; this
// guards against ones that stall without disconnecting.
func (t *TypingIndex) Expire(ttl time.Duration) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-ttl)
	seen := make(map[string]struct{})
	var rooms []string
	for _, id := range append([]domain.ConnectionID(nil), t.order...) {
		e := t.entries[id]
		if e.Since.After(cutoff) {
			continue
		}
		t.removeLocked(id)
		if _, ok := seen[e.Room]; !ok {
			seen[e.Room] = struct{}{}
			rooms = append(rooms, e.Room)
		}
	}
	return rooms
}

func (t *TypingIndex) removeLocked(id domain.ConnectionID) {
	if _, ok := t.entries[id]; !ok {
		return
	}
	delete(t.entries, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}
