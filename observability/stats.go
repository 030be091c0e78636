// Package observability aggregates hub counters for the telemetry
// worker and the read-only stats endpoint.
package observability

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Snapshot is the JSON view served by /api/stats and logged by the
// telemetry worker.
type Snapshot struct {
	OpenConnections   int64  `json:"open_connections"`
	TotalConnections  uint64 `json:"total_connections"`
	MessagesRouted    uint64 `json:"messages_routed"`
	PrivateMessages   uint64 `json:"private_messages"`
	CensoredMessages  uint64 `json:"censored_messages"`
	DeliveryFailures  uint64 `json:"delivery_failures"`
	TypingExpirations uint64 `json:"typing_expirations"`
	AllocMemMB        uint64 `json:"alloc_mem_mb"`
	NumGC             uint32 `json:"num_gc"`
	NumGoroutine      int    `json:"num_goroutine"`
	Since             string `json:"since"`
}

// Stats is a set of atomic counters, safe for concurrent use.
type Stats struct {
	open              atomic.Int64
	totalConnections  atomic.Uint64
	messagesRouted    atomic.Uint64
	privateMessages   atomic.Uint64
	censoredMessages  atomic.Uint64
	deliveryFailures  atomic.Uint64
	typingExpirations atomic.Uint64
	started           time.Time
}

func NewStats() *Stats {
	return &Stats{started: time.Now().UTC()}
}

func (s *Stats) ConnectionOpened() {
	s.open.Add(1)
	s.totalConnections.Add(1)
}

func (s *Stats) ConnectionClosed()      { s.open.Add(-1) }
func (s *Stats) MessageRouted()         { s.messagesRouted.Add(1) }
func (s *Stats) PrivateMessageRouted()  { s.privateMessages.Add(1) }
func (s *Stats) MessageCensored()       { s.censoredMessages.Add(1) }
func (s *Stats) DeliveryFailed()        { s.deliveryFailures.Add(1) }
func (s *Stats) TypingEntriesExpired(n int) {
	s.typingExpirations.Add(uint64(n))
}

// Latest assembles a point-in-time snapshot, including Go memory
// stats for the dashboard.
func (s *Stats) Latest() Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return Snapshot{
		OpenConnections:   s.open.Load(),
		TotalConnections:  s.totalConnections.Load(),
		MessagesRouted:    s.messagesRouted.Load(),
		PrivateMessages:   s.privateMessages.Load(),
		CensoredMessages:  s.censoredMessages.Load(),
		DeliveryFailures:  s.deliveryFailures.Load(),
		TypingExpirations: s.typingExpirations.Load(),
		AllocMemMB:        m.Alloc / 1024 / 1024,
		NumGC:             m.NumGC,
		NumGoroutine:      runtime.NumGoroutine(),
		Since:             s.started.Format(time.RFC3339),
	}
}
