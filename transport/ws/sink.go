// Package ws is the websocket boundary of the hub. It upgrades HTTP
// connections, translates inbound frames into gateway dispatch calls,
// and writes outbound events back to the client. No hub state lives
// here.
package ws

import (
	"context"
	"fmt"
	"sync"

	"chat-hub/domain/event"
)

// Sink is one connection's outbound buffer. Consume is called by the
// gateway's fan-out; the write pump drains the channel onto the wire.
type Sink struct {
	events chan event.DomainEvent
	done   chan struct{}
	once   sync.Once
}

func NewSink(bufferSize int) *Sink {
	return &Sink{
		events: make(chan event.DomainEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Consume hands an event to the write pump. A full buffer drops the
// event silently: delivery is best-effort and a slow client must not
// stall the fan-out.
func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-s.done:
		return fmt.Errorf("sink closed")
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case s.events <- e:
		return nil
	default:
		return nil
	}
}

// Close wakes the write pump; it is safe to call more than once.
// The events channel itself is never closed because the fan-out may
// still hold a reference.
func (s *Sink) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Sink) Events() <-chan event.DomainEvent {
	return s.events
}

func (s *Sink) Done() <-chan struct{} {
	return s.done
}
