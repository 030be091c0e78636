// Package runtime owns the hub's live state: presence, room
// membership, typing flags, and message routing. Each component
// guards its own state; nothing here touches the transport.
package runtime

import (
	"strings"
	"sync"

	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
)

type session struct {
	record domain.PresenceRecord
	sink   contract.EventSink
}

// Registry is the connection registry. It maps a connection id to its
// presence record and the sink events are delivered on. It knows
// nothing about rooms; cascading cleanup is the gateway's job.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnectionID]*session
	order    []domain.ConnectionID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ConnectionID]*session),
	}
}

// Register creates an anonymous presence record for a fresh transport
// session. Re-registering a live id is a programming error upstream.
func (r *Registry) Register(id domain.ConnectionID, sink contract.EventSink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		return errors.ErrDuplicateConnection
	}
	r.sessions[id] = &session{
		record: domain.PresenceRecord{ID: id},
		sink:   sink,
	}
	r.order = append(r.order, id)
	return nil
}

// SetUsername moves a connection from Anonymous to Named. The username
// is set once and immutable for the rest of the session. On success it
// returns the full presence list so the caller can broadcast it.
func (r *Registry) SetUsername(id domain.ConnectionID, username string) ([]domain.PresenceRecord, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.ErrInvalidUsername
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.ErrUnknownConnection
	}
	if s.record.Named() {
		return nil, errors.ErrAlreadyNamed
	}
	s.record.Username = username
	return r.listLocked(), nil
}

// Remove deletes the record and returns it so the caller can cascade
// cleanup into membership and typing state.
func (r *Registry) Remove(id domain.ConnectionID) (domain.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.PresenceRecord{}, errors.ErrUnknownConnection
	}
	delete(r.sessions, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return s.record, nil
}

// List returns the named connections, first-joined first. Anonymous
// connections are not presence yet and stay out of the snapshot.
func (r *Registry) List() []domain.PresenceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked()
}

func (r *Registry) listLocked() []domain.PresenceRecord {
	var records []domain.PresenceRecord
	for _, id := range r.order {
		if s := r.sessions[id]; s.record.Named() {
			records = append(records, s.record)
		}
	}
	return records
}

// Get returns the presence record for a connection, named or not.
func (r *Registry) Get(id domain.ConnectionID) (domain.PresenceRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.PresenceRecord{}, false
	}
	return s.record, true
}

// SinkOf resolves the outbound sink of a connection.
func (r *Registry) SinkOf(id domain.ConnectionID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return s.sink, true
}

// AllIDs returns every registered connection id, insertion order.
// Anonymous connections are included: they receive global traffic.
func (r *Registry) AllIDs() []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ConnectionID, len(r.order))
	copy(out, r.order)
	return out
}
