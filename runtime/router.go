package runtime

import (
	"strings"
	"time"

	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/projection"

	"github.com/google/uuid"
)

// anonymousSender is used when a registered but still unnamed
// connection sends a message.
const anonymousSender = "Anonymous"

// Router builds messages and resolves their recipient sets. It owns
// the bounded history; everything else it reads through the owning
// component's interface.
type Router struct {
	registry   contract.IRegistry
	membership contract.IMembership
	history    *projection.History
	now        func() time.Time
}

func NewRouter(registry contract.IRegistry, membership contract.IMembership, history *projection.History) *Router {
	return &Router{
		registry:   registry,
		membership: membership,
		history:    history,
		now:        time.Now,
	}
}

// Route constructs a message with a fresh id and resolves who should
// receive it.
//
// Room messages are routed even when the sender is not a member of
// the room; membership is deliberately not enforced here. Private
// messages always include the sender in the recipient set as an echo.
//
// Delivery downstream is best-effort and at-most-once: Route only
// decides the recipient set, it gives no guarantee any recipient's
// transport is still alive.
func (r *Router) Route(senderID domain.ConnectionID, body string, scope domain.Scope) (domain.RoutedMessage, error) {
	sender, ok := r.registry.Get(senderID)
	if !ok {
		return domain.RoutedMessage{}, errors.ErrUnknownSender
	}
	if strings.TrimSpace(body) == "" {
		return domain.RoutedMessage{}, errors.ErrEmptyBody
	}

	senderName := sender.Username
	if senderName == "" {
		senderName = anonymousSender
	}

	msg := domain.Message{
		ID:        uuid.New(),
		Sender:    senderName,
		SenderID:  senderID,
		Body:      body,
		Room:      scope.Room,
		Private:   scope.Kind == domain.ScopePrivate,
		CreatedAt: r.now().UTC(),
	}

	var recipients []domain.ConnectionID
	switch scope.Kind {
	case domain.ScopeRoom:
		recipients = r.membership.MembersOf(scope.Room)
		r.history.Append(msg)
	case domain.ScopePrivate:
		recipients = []domain.ConnectionID{scope.To}
		if scope.To != senderID {
			recipients = append(recipients, senderID)
		}
	default:
		recipients = r.registry.AllIDs()
		r.history.Append(msg)
	}

	return domain.RoutedMessage{Message: msg, Recipients: recipients}, nil
}

// Recent exposes the bounded history, oldest first. Private messages
// are never in it.
func (r *Router) Recent() []domain.Message {
	return r.history.Recent()
}
