package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-hub/observability"
)

// typingExpirer is the slice of the typing aggregator the sweeper
// needs: evict stale entries, report the scopes that changed.
type typingExpirer interface {
	Expire(ttl time.Duration) []string
}

// typingNotifier rebroadcasts the typing list of one scope.
type typingNotifier interface {
	NotifyTyping(room string)
}

// TypingSweeper evicts typing entries whose owners went quiet without
// ever sending isTyping=false. Clients normally clear their own flag
// after an inactivity window; the sweeper covers the ones that stall
// without disconnecting.
type TypingSweeper struct {
	log      *slog.Logger
	typing   typingExpirer
	notifier typingNotifier
	stats    *observability.Stats
	ttl      time.Duration
	interval time.Duration
}

func NewTypingSweeper(log *slog.Logger, typing typingExpirer, notifier typingNotifier,
	stats *observability.Stats, ttl, interval time.Duration) *TypingSweeper {
	return &TypingSweeper{
		log:      log,
		typing:   typing,
		notifier: notifier,
		stats:    stats,
		ttl:      ttl,
		interval: interval,
	}
}

func (w *TypingSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *TypingSweeper) sweep() {
	rooms := w.typing.Expire(w.ttl)
	if len(rooms) == 0 {
		return
	}
	w.stats.TypingEntriesExpired(len(rooms))
	w.log.Debug("stale typing entries evicted", "scopes", len(rooms))
	for _, room := range rooms {
		w.notifier.NotifyTyping(room)
	}
}
