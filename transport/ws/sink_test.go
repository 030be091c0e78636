package ws

import (
	"context"
	"testing"

	"chat-hub/domain/event"

	"github.com/stretchr/testify/require"
)

func TestSink_ConsumeAndDrain(t *testing.T) {
	req := require.New(t)
	sink := NewSink(2)
	ctx := context.Background()

	// When two events are consumed
	req.NoError(sink.Consume(ctx, event.TypingList{Users: []string{"alice"}}))
	req.NoError(sink.Consume(ctx, event.Rejected{Code: "empty_body"}))

	// Then the write pump drains them in order
	first := <-sink.Events()
	req.Equal(event.NameTypingUsers, first.EventName())
	second := <-sink.Events()
	req.Equal(event.NameError, second.EventName())
}

func TestSink_FullBufferDropsSilently(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)
	ctx := context.Background()

	// Given a full buffer with no reader
	req.NoError(sink.Consume(ctx, event.TypingList{}))

	// When one more event arrives
	err := sink.Consume(ctx, event.Rejected{Code: "dropped"})

	// Then delivery is best-effort: no error, the event is gone
	req.NoError(err)
	req.Len(sink.Events(), 1)
}

func TestSink_ConsumeAfterClose(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)

	// Given a closed sink
	sink.Close()

	// Then consuming fails so the fan-out can skip the connection
	err := sink.Consume(context.Background(), event.TypingList{})
	req.Error(err)

	// And closing twice is safe
	sink.Close()
}
