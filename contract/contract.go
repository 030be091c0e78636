//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"chat-hub/domain"
	"chat-hub/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself.
// Supervision, restarts and panic recovery live in the supervisor.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one connection's outbound channel. Consume must not
// block past ctx; a sink that cannot keep up may drop the event.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry owns presence: which connections exist, their usernames,
// and the sink each one receives events on.
type IRegistry interface {
	Register(id domain.ConnectionID, sink EventSink) error
	SetUsername(id domain.ConnectionID, username string) ([]domain.PresenceRecord, error)
	Remove(id domain.ConnectionID) (domain.PresenceRecord, error)
	List() []domain.PresenceRecord
	Get(id domain.ConnectionID) (domain.PresenceRecord, bool)
	SinkOf(id domain.ConnectionID) (EventSink, bool)
	AllIDs() []domain.ConnectionID
}

// IMembership owns the connection<->room relation, both directions.
type IMembership interface {
	Join(id domain.ConnectionID, room string) []domain.ConnectionID
	Leave(id domain.ConnectionID, room string) []domain.ConnectionID
	MembersOf(room string) []domain.ConnectionID
	RoomsOf(id domain.ConnectionID) []string
	Purge(id domain.ConnectionID) []string
}

// ITyping owns the ephemeral per-connection typing flags.
type ITyping interface {
	SetTyping(id domain.ConnectionID, username string, isTyping bool, room string)
	TypingIn(room string) []string
	Clear(id domain.ConnectionID) (domain.TypingEntry, bool)
	Expire(ttl time.Duration) []string
}

// IRouter resolves recipients and keeps the bounded history.
type IRouter interface {
	Route(senderID domain.ConnectionID, body string, scope domain.Scope) (domain.RoutedMessage, error)
	Recent() []domain.Message
}
