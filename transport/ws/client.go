package ws

import (
	"context"
	"encoding/json"
	std "errors"
	"fmt"
	"log/slog"
	"time"

	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/runtime"

	"github.com/gorilla/websocket"
)

// frame is the wire format in both directions:
// {"event": "...", "data": {...}}.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundFrame struct {
	Event event.Name        `json:"event"`
	Data  event.DomainEvent `json:"data"`
}

// Client glues one websocket connection to the gateway: the read pump
// dispatches inbound frames, the write pump drains the sink.
type Client struct {
	id      domain.ConnectionID
	gateway *runtime.Gateway
	conn    *websocket.Conn
	sink    *Sink
	log     *slog.Logger
}

func newClient(id domain.ConnectionID, gateway *runtime.Gateway,
	conn *websocket.Conn, sink *Sink, log *slog.Logger) *Client {
	return &Client{id: id, gateway: gateway, conn: conn, sink: sink, log: log}
}

// readPump reads frames until the connection dies, which is the only
// way a connection reaches its terminal state. Cleanup cascades
// through the gateway exactly once.
func (c *Client) readPump() {
	defer func() {
		c.gateway.Disconnect(c.id)
		c.sink.Close()
		_ = c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read failed", "connection_id", c.id, "error", err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.report(fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err))
			continue
		}
		if err := c.dispatch(f); err != nil {
			c.report(err)
		}
	}
}

// dispatch translates one inbound frame into the matching gateway
// call. All business rules live behind the gateway; this is pure
// translation.
func (c *Client) dispatch(f frame) error {
	switch f.Event {
	case "user_join":
		var cmd domain.UserJoinCommand
		if err := decode(f.Data, &cmd); err != nil {
			return err
		}
		return c.gateway.UserJoin(c.id, cmd)
	case "join_room":
		var cmd domain.JoinRoomCommand
		if err := decode(f.Data, &cmd); err != nil {
			return err
		}
		return c.gateway.JoinRoom(c.id, cmd)
	case "leave_room":
		var cmd domain.LeaveRoomCommand
		if err := decode(f.Data, &cmd); err != nil {
			return err
		}
		return c.gateway.LeaveRoom(c.id, cmd)
	case "send_message":
		var cmd domain.SendMessageCommand
		if err := decode(f.Data, &cmd); err != nil {
			return err
		}
		return c.gateway.SendMessage(c.id, cmd)
	case "private_message":
		var cmd domain.PrivateMessageCommand
		if err := decode(f.Data, &cmd); err != nil {
			return err
		}
		return c.gateway.PrivateMessage(c.id, cmd)
	case "typing":
		var cmd domain.TypingCommand
		if err := decode(f.Data, &cmd); err != nil {
			return err
		}
		return c.gateway.Typing(c.id, cmd)
	default:
		return fmt.Errorf("%w: unknown event %q", errors.ErrInvalidPayload, f.Event)
	}
}

// writePump is the single writer on the connection.
func (c *Client) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.sink.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case evt := <-c.sink.Events():
			if err := c.conn.WriteJSON(outboundFrame{Event: evt.EventName(), Data: evt}); err != nil {
				c.log.Debug("write failed", "connection_id", c.id, "error", err)
				return
			}
		}
	}
}

// report sends a validation failure back to this connection only.
func (c *Client) report(err error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = c.sink.Consume(ctx, event.Rejected{Code: codeOf(err), Message: err.Error()})
}

func codeOf(err error) string {
	switch {
	case std.Is(err, errors.ErrUnknownConnection):
		return "unknown_connection"
	case std.Is(err, errors.ErrDuplicateConnection):
		return "duplicate_connection"
	case std.Is(err, errors.ErrInvalidUsername):
		return "invalid_username"
	case std.Is(err, errors.ErrAlreadyNamed):
		return "already_named"
	case std.Is(err, errors.ErrAnonymousConnection):
		return "anonymous_connection"
	case std.Is(err, errors.ErrUnknownSender):
		return "unknown_sender"
	case std.Is(err, errors.ErrEmptyBody):
		return "empty_body"
	case std.Is(err, errors.ErrInvalidPayload):
		return "invalid_payload"
	default:
		return "internal"
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", errors.ErrInvalidPayload)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}
