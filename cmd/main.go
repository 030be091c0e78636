package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chat-hub/internal"
	"chat-hub/moderation"
	"chat-hub/observability"
	"chat-hub/projection"
	"chat-hub/runtime"
	"chat-hub/runtime/workers"
	"chat-hub/transport/ws"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

//go:embed censored/*
var censoredFolder embed.FS

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanup always executes
// before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Core components
	stats := observability.NewStats()
	registry := runtime.NewRegistry()
	membership := runtime.NewMembership()
	typing := runtime.NewTypingIndex()
	history := projection.NewHistory(config.HistoryCapacity)
	router := runtime.NewRouter(registry, membership, history)
	gateway := runtime.NewGateway(log, registry, membership, typing, router, stats, config.SinkTimeout)

	if config.EnableModeration {
		replacement, err := CharacterRune(config.CharReplacement)
		if err != nil {
			return err
		}
		data, err := moderation.LoadWords(censoredFolder, "censored")
		if err != nil {
			return fmt.Errorf("loading censored words: %w", err)
		}
		log.Info(fmt.Sprintf("%d censored words loaded [%s]",
			len(data.Words), strings.Join(data.Languages, ",")))

		moderator, err := moderation.NewModerator(data.Words, replacement)
		if err != nil {
			return fmt.Errorf("building moderator: %w", err)
		}
		gateway.WithModerator(moderator)
	}

	// 3. Supervision: typing sweeper + telemetry
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewTypingSweeper(log, typing, gateway, stats, config.TypingTTL, config.TypingSweepInterval),
		workers.NewTelemetryWorker(log, stats, config.TelemetryInterval),
	)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)

	// 5. HTTP server: websocket endpoint + read-only snapshot API
	mux := internal.NewAPIRouter(log, registry, router, stats)
	mux.HandleFunc("/ws", ws.Handler(log, gateway, config.ConnectionBufferSize))

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		log.Info("chat hub listening", "address", address)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown requested")
	}

	// 6. Graceful shutdown: stop accepting, then stop the workers.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", "error", err)
	}
	sup.Stop()
	return nil
}
