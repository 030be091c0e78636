package ws

import (
	"log/slog"
	"net/http"

	"chat-hub/domain"
	"chat-hub/runtime"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The hub carries no credentials; origin filtering is left to the
	// deployment in front of it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades an HTTP request, assigns the connection its opaque
// id, and registers it with the gateway in the anonymous state.
func Handler(log *slog.Logger, gateway *runtime.Gateway, bufferSize int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("upgrade failed", "error", err)
			return
		}

		id := domain.ConnectionID(uuid.NewString())
		sink := NewSink(bufferSize)
		if err := gateway.Connect(id, sink); err != nil {
			log.Error("connect rejected", "connection_id", id, "error", err)
			_ = conn.Close()
			return
		}

		client := newClient(id, gateway, conn, sink, log)
		go client.writePump()
		go client.readPump()
	}
}
