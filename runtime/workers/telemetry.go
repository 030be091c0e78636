package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"chat-hub/observability"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker periodically logs hub counters together with
// process-level metrics (RSS, CPU, status). It is pure observability:
// losing a tick is harmless.
type TelemetryWorker struct {
	log      *slog.Logger
	stats    *observability.Stats
	interval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, stats *observability.Stats, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, stats: stats, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting telemetry worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			snap := w.stats.Latest()
			w.log.Info("hub telemetry",
				"open_connections", snap.OpenConnections,
				"messages_routed", snap.MessagesRouted,
				"private_messages", snap.PrivateMessages,
				"delivery_failures", snap.DeliveryFailures,
				"censored_messages", snap.CensoredMessages,
				"goroutines", snap.NumGoroutine,
				"alloc_mb", snap.AllocMemMB,
				"rss_bytes", rss,
				"cpu_percent", cpu,
				"pid_status", status)
		}
	}
}

// selfStats retrieves memory, CPU, and OS status for the process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
