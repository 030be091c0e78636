package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/moderation"
	"chat-hub/observability"

	"github.com/abadojack/whatlanggo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Gateway is the boundary between the transport layer and the state
// owning components. It exposes one synchronous dispatch method per
// inbound event kind; each validates the payload, invokes the owning
// components, and fans the resulting events out to the affected
// connections.
//
// Taxonomy errors are returned to the caller so the transport can
// report them to the originating connection only. Fan-out is
// best-effort and at-most-once: a recipient whose transport is
// mid-teardown is skipped, never retried.
type Gateway struct {
	log         *slog.Logger
	registry    contract.IRegistry
	membership  contract.IMembership
	typing      contract.ITyping
	router      contract.IRouter
	moderator   *moderation.Moderator
	stats       *observability.Stats
	validate    *validator.Validate
	sinkTimeout time.Duration
}

func NewGateway(log *slog.Logger, registry *Registry, membership *Membership,
	typing *TypingIndex, router *Router, stats *observability.Stats,
	sinkTimeout time.Duration) *Gateway {
	return &Gateway{
		log:         log,
		registry:    registry,
		membership:  membership,
		typing:      typing,
		router:      router,
		stats:       stats,
		validate:    validator.New(),
		sinkTimeout: sinkTimeout,
	}
}

// WithModerator enables body censoring on routed messages.
func (g *Gateway) WithModerator(m *moderation.Moderator) *Gateway {
	g.moderator = m
	return g
}

// Connect registers a fresh, still anonymous transport session.
func (g *Gateway) Connect(id domain.ConnectionID, sink contract.EventSink) error {
	if err := g.registry.Register(id, sink); err != nil {
		return err
	}
	g.stats.ConnectionOpened()
	g.log.Info("client connected", "connection_id", id)
	return nil
}

// UserJoin moves a connection from Anonymous to Named, broadcasts the
// updated presence list to everyone and a user_joined notification to
// everyone else.
func (g *Gateway) UserJoin(id domain.ConnectionID, cmd domain.UserJoinCommand) error {
	if err := g.check(cmd); err != nil {
		return err
	}

	presence, err := g.registry.SetUsername(id, cmd.Username)
	if err != nil {
		return err
	}

	record, _ := g.registry.Get(id)
	g.fanout(event.PresenceList{Users: presence}, g.registry.AllIDs())
	g.fanout(event.UserJoined{User: record}, g.others(id))
	g.log.Info("user joined", "connection_id", id, "username", record.Username)
	return nil
}

// JoinRoom adds a named connection to a room, creating the room
// implicitly, and posts a system notice to the other members.
func (g *Gateway) JoinRoom(id domain.ConnectionID, cmd domain.JoinRoomCommand) error {
	if err := g.check(cmd); err != nil {
		return err
	}
	record, err := g.named(id)
	if err != nil {
		return err
	}

	members := g.membership.Join(id, cmd.Room)

	notice := g.systemMessage(cmd.Room, fmt.Sprintf("%s joined the room.", record.Username))
	g.fanout(event.MessageReceived{Message: notice},
		lo.Filter(members, func(m domain.ConnectionID, _ int) bool { return m != id }))
	g.log.Debug("room joined", "connection_id", id, "room", cmd.Room, "members", len(members))
	return nil
}

// LeaveRoom removes the connection from a room. Leaving a room it is
// not in is a no-op.
func (g *Gateway) LeaveRoom(id domain.ConnectionID, cmd domain.LeaveRoomCommand) error {
	if err := g.check(cmd); err != nil {
		return err
	}
	if _, err := g.named(id); err != nil {
		return err
	}

	g.membership.Leave(id, cmd.Room)
	g.log.Debug("room left", "connection_id", id, "room", cmd.Room)
	return nil
}

// SendMessage routes a global or room-scoped message and broadcasts
// it to the resolved recipients.
func (g *Gateway) SendMessage(id domain.ConnectionID, cmd domain.SendMessageCommand) error {
	if err := g.check(cmd); err != nil {
		return err
	}

	scope := domain.GlobalScope()
	if cmd.Room != "" {
		scope = domain.RoomScope(cmd.Room)
	}

	routed, err := g.router.Route(id, g.censor(id, cmd.Message), scope)
	if err != nil {
		return err
	}

	g.stats.MessageRouted()
	g.fanout(event.MessageReceived{Message: routed.Message}, routed.Recipients)
	return nil
}

// PrivateMessage routes a message to a single connection, echoing it
// back to the sender. An unknown target is tolerated: the echo still
// happens, delivery to the target is silently skipped.
func (g *Gateway) PrivateMessage(id domain.ConnectionID, cmd domain.PrivateMessageCommand) error {
	if err := g.check(cmd); err != nil {
		return err
	}

	routed, err := g.router.Route(id, g.censor(id, cmd.Message),
		domain.PrivateScope(domain.ConnectionID(cmd.To)))
	if err != nil {
		return err
	}

	g.stats.PrivateMessageRouted()
	g.fanout(event.PrivateDelivered{Message: routed.Message}, routed.Recipients)
	return nil
}

// Typing records or clears the typing flag and rebroadcasts the
// typing list of the affected scope. Anonymous connections are
// silently ignored, matching the presence rules.
func (g *Gateway) Typing(id domain.ConnectionID, cmd domain.TypingCommand) error {
	record, ok := g.registry.Get(id)
	if !ok || !record.Named() {
		return nil
	}

	g.typing.SetTyping(id, record.Username, cmd.IsTyping, cmd.Room)
	g.NotifyTyping(cmd.Room)
	return nil
}

// Disconnect is terminal and reachable from any state. It removes the
// connection everywhere and notifies the remaining connections.
func (g *Gateway) Disconnect(id domain.ConnectionID) {
	record, err := g.registry.Remove(id)
	if err != nil {
		return
	}
	g.stats.ConnectionClosed()

	rooms := g.membership.Purge(id)
	entry, wasTyping := g.typing.Clear(id)

	if record.Named() {
		remaining := g.registry.AllIDs()
		g.fanout(event.UserLeft{User: record}, remaining)
		g.fanout(event.PresenceList{Users: g.registry.List()}, remaining)
	}
	if wasTyping {
		g.NotifyTyping(entry.Room)
	}
	g.log.Info("client disconnected",
		"connection_id", id, "username", record.Username, "rooms_left", len(rooms))
}

// NotifyTyping pushes the recomputed typing list for one scope: room
// members for a named room, everyone for the global scope. The typing
// sweeper calls this after evicting stale entries.
func (g *Gateway) NotifyTyping(room string) {
	users := g.typing.TypingIn(room)
	if users == nil {
		users = []string{}
	}

	recipients := g.registry.AllIDs()
	if room != "" {
		recipients = g.membership.MembersOf(room)
	}
	g.fanout(event.TypingList{Room: room, Users: users}, recipients)
}

// censor runs the body through the moderator when one is configured.
// Censored hits are logged with the detected language.
func (g *Gateway) censor(id domain.ConnectionID, body string) string {
	if g.moderator == nil {
		return body
	}
	censored, found := g.moderator.Censor(body)
	if len(found) > 0 {
		g.stats.MessageCensored()
		info := whatlanggo.Detect(body)
		g.log.Warn("message censored",
			"connection_id", id,
			"lang", info.Lang.Iso6391(),
			"matches", len(found))
	}
	return censored
}

// fanout delivers one event to every resolved recipient, best-effort.
// A missing sink means the connection is already gone; a Consume
// error is counted and logged, never surfaced.
func (g *Gateway) fanout(evt event.DomainEvent, recipients []domain.ConnectionID) {
	ctx, cancel := context.WithTimeout(context.Background(), g.sinkTimeout)
	defer cancel()

	for _, id := range recipients {
		sink, ok := g.registry.SinkOf(id)
		if !ok {
			continue
		}
		if err := sink.Consume(ctx, evt); err != nil {
			g.stats.DeliveryFailed()
			g.log.Debug("delivery failed", "connection_id", id, "event", evt.EventName(), "error", err)
		}
	}
}

func (g *Gateway) others(id domain.ConnectionID) []domain.ConnectionID {
	return lo.Filter(g.registry.AllIDs(), func(c domain.ConnectionID, _ int) bool {
		return c != id
	})
}

// named resolves the presence record and enforces the state machine:
// room and typing operations require a username.
func (g *Gateway) named(id domain.ConnectionID) (domain.PresenceRecord, error) {
	record, ok := g.registry.Get(id)
	if !ok {
		return domain.PresenceRecord{}, errors.ErrUnknownConnection
	}
	if !record.Named() {
		return domain.PresenceRecord{}, errors.ErrAnonymousConnection
	}
	return record, nil
}

func (g *Gateway) check(cmd any) error {
	if err := g.validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}

func (g *Gateway) systemMessage(room, body string) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		Sender:    "System",
		Body:      body,
		Room:      room,
		System:    true,
		CreatedAt: time.Now().UTC(),
	}
}
