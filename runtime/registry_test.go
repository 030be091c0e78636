package runtime

import (
	"context"
	"testing"

	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type nopSink struct {
}

func (s nopSink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Register_Anonymous(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := domain.ConnectionID(uuid.NewString())
	sink := nopSink{}

	// Given no connection is registered
	req.Empty(registry.AllIDs())

	// When a fresh connection registers
	err := registry.Register(id, sink)
	req.NoError(err)

	// Then the connection is known but not presence yet
	req.Equal([]domain.ConnectionID{id}, registry.AllIDs())
	req.Empty(registry.List())

	record, ok := registry.Get(id)
	req.True(ok)
	req.False(record.Named())

	got, ok := registry.SinkOf(id)
	req.True(ok)
	req.Equal(sink, got)
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := domain.ConnectionID(uuid.NewString())

	// Given a registered connection
	req.NoError(registry.Register(id, nopSink{}))

	// When the same id registers again
	err := registry.Register(id, nopSink{})

	// Then the second registration is rejected
	req.ErrorIs(err, errors.ErrDuplicateConnection)
}

func TestRegistry_SetUsername_BecomesPresence(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := domain.ConnectionID(uuid.NewString())
	req.NoError(registry.Register(id, nopSink{}))

	// When the connection picks a username
	presence, err := registry.SetUsername(id, "alice")
	req.NoError(err)

	// Then the returned snapshot and List agree
	req.Len(presence, 1)
	req.Equal("alice", presence[0].Username)
	req.Equal(presence, registry.List())
}

func TestRegistry_SetUsername_Trimmed(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := domain.ConnectionID(uuid.NewString())
	req.NoError(registry.Register(id, nopSink{}))

	// When the username carries surrounding whitespace
	_, err := registry.SetUsername(id, "  bob  ")
	req.NoError(err)

	// Then the stored username is trimmed
	record, ok := registry.Get(id)
	req.True(ok)
	req.Equal("bob", record.Username)
}

func TestRegistry_SetUsername_Failures(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := domain.ConnectionID(uuid.NewString())
	req.NoError(registry.Register(id, nopSink{}))

	// Then a blank username is rejected before any lookup
	_, err := registry.SetUsername(id, "   ")
	req.ErrorIs(err, errors.ErrInvalidUsername)

	// Then an unknown connection is rejected
	_, err = registry.SetUsername(domain.ConnectionID(uuid.NewString()), "alice")
	req.ErrorIs(err, errors.ErrUnknownConnection)

	// Given the connection is already named
	_, err = registry.SetUsername(id, "alice")
	req.NoError(err)

	// Then the username cannot change for the rest of the session
	_, err = registry.SetUsername(id, "alice2")
	req.ErrorIs(err, errors.ErrAlreadyNamed)
}

func TestRegistry_List_InsertionOrder(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first := domain.ConnectionID(uuid.NewString())
	second := domain.ConnectionID(uuid.NewString())
	anonymous := domain.ConnectionID(uuid.NewString())

	// Given two named connections and one anonymous one
	req.NoError(registry.Register(first, nopSink{}))
	req.NoError(registry.Register(second, nopSink{}))
	req.NoError(registry.Register(anonymous, nopSink{}))
	_, err := registry.SetUsername(first, "alice")
	req.NoError(err)
	_, err = registry.SetUsername(second, "bob")
	req.NoError(err)

	// Then List keeps join order and skips the anonymous connection
	list := registry.List()
	req.Len(list, 2)
	req.Equal("alice", list[0].Username)
	req.Equal("bob", list[1].Username)

	// And AllIDs still carries everyone
	req.Len(registry.AllIDs(), 3)
}

func TestRegistry_Remove(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	id := domain.ConnectionID(uuid.NewString())
	req.NoError(registry.Register(id, nopSink{}))
	_, err := registry.SetUsername(id, "alice")
	req.NoError(err)

	// When the connection is removed
	record, err := registry.Remove(id)
	req.NoError(err)

	// Then the removed record is returned for cascading cleanup
	req.Equal("alice", record.Username)
	req.Empty(registry.AllIDs())
	req.Empty(registry.List())

	_, ok := registry.Get(id)
	req.False(ok)

	// Then removing it twice fails
	_, err = registry.Remove(id)
	req.ErrorIs(err, errors.ErrUnknownConnection)
}
