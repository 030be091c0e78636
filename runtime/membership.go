package runtime

import (
	"sync"

	"chat-hub/domain"
)

// Membership is the room membership index. It owns both directions of
// the connection<->room relation under a single mutex, so the
// invariant "R in rooms(C) iff C in members(R)" cannot be observed
// broken from outside.
//
// Rooms are created implicitly on first join and garbage-collected as
// soon as their member set becomes empty.
type Membership struct {
	mu     sync.Mutex
	rooms  map[string][]domain.ConnectionID
	joined map[domain.ConnectionID]map[string]struct{}
}

func NewMembership() *Membership {
	return &Membership{
		rooms:  make(map[string][]domain.ConnectionID),
		joined: make(map[domain.ConnectionID]map[string]struct{}),
	}
}

// Join adds the connection to the room and returns the resulting
// member set. Joining a room twice is a no-op, not an error.
func (m *Membership) Join(id domain.ConnectionID, room string) []domain.ConnectionID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.joined[id][room]; ok {
		return copyIDs(m.rooms[room])
	}

	if m.joined[id] == nil {
		m.joined[id] = make(map[string]struct{})
	}
	m.joined[id][room] = struct{}{}
	m.rooms[room] = append(m.rooms[room], id)
	return copyIDs(m.rooms[room])
}

// Leave removes both sides of the relation. Leaving a room the
// connection is not in is a no-op returning the current member set.
func (m *Membership) Leave(id domain.ConnectionID, room string) []domain.ConnectionID {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.leaveLocked(id, room)
	return copyIDs(m.rooms[room])
}

func (m *Membership) leaveLocked(id domain.ConnectionID, room string) {
	if _, ok := m.joined[id][room]; !ok {
		return
	}
	delete(m.joined[id], room)
	if len(m.joined[id]) == 0 {
		delete(m.joined, id)
	}

	members := m.rooms[room]
	for i, mid := range members {
		if mid == id {
			members = append(members[:i], members[i+1:]...)
			break
		}
	}
	if len(members) == 0 {
		// Empty rooms are freed immediately so long-running processes
		// with high room churn do not accumulate stale entries.
		delete(m.rooms, room)
		return
	}
	m.rooms[room] = members
}

// MembersOf returns the member set of a room, first-joined first.
// A never-joined or now-empty room yields an empty set, not an error.
func (m *Membership) MembersOf(room string) []domain.ConnectionID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyIDs(m.rooms[room])
}

// RoomsOf returns the rooms the connection is currently in.
func (m *Membership) RoomsOf(id domain.ConnectionID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := make([]string, 0, len(m.joined[id]))
	for room := range m.joined[id] {
		rooms = append(rooms, room)
	}
	return rooms
}

// Purge removes the connection from every room it was in and returns
// the affected room names so the caller can notify remaining members.
func (m *Membership) Purge(id domain.ConnectionID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := make([]string, 0, len(m.joined[id]))
	for room := range m.joined[id] {
		rooms = append(rooms, room)
	}
	for _, room := range rooms {
		m.leaveLocked(id, room)
	}
	return rooms
}

func copyIDs(ids []domain.ConnectionID) []domain.ConnectionID {
	out := make([]domain.ConnectionID, len(ids))
	copy(out, ids)
	return out
}
