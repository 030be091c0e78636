// Package internal exposes the read-only snapshot API. Every handler
// is a plain synchronous read over state the core components already
// own; no hub logic lives here.
package internal

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"chat-hub/domain"
	"chat-hub/observability"

	"github.com/gorilla/mux"
)

type presenceLister interface {
	List() []domain.PresenceRecord
}

type historyReader interface {
	Recent() []domain.Message
}

// NewAPIRouter mounts the snapshot endpoints:
//
//	GET /api/users    current presence list
//	GET /api/messages bounded message history, oldest first
//	GET /api/stats    hub counters and process stats
func NewAPIRouter(log *slog.Logger, presence presenceLister,
	history historyReader, stats *observability.Stats) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/users", func(w http.ResponseWriter, _ *http.Request) {
		users := presence.List()
		if users == nil {
			users = []domain.PresenceRecord{}
		}
		writeJSON(log, w, users)
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/messages", func(w http.ResponseWriter, _ *http.Request) {
		messages := history.Recent()
		if messages == nil {
			messages = []domain.Message{}
		}
		writeJSON(log, w, messages)
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(log, w, stats.Latest())
	}).Methods(http.MethodGet)

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("chat-hub is running"))
	}).Methods(http.MethodGet)

	return r
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("snapshot encoding failed", "error", err)
	}
}
