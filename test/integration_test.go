package test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-hub/domain"
	"chat-hub/internal"
	"chat-hub/moderation"
	"chat-hub/observability"
	"chat-hub/projection"
	"chat-hub/runtime"
	"chat-hub/transport/ws"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// wsClient wraps one websocket connection with a frame reader feeding
// a channel, so scenarios can wait for specific events.
type wsClient struct {
	t      *testing.T
	cfg    Config
	conn   *websocket.Conn
	frames chan frame
}

func dial(t *testing.T, cfg Config, serverURL string) *wsClient {
	t.Helper()
	req := require.New(t)

	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)

	c := &wsClient{t: t, cfg: cfg, conn: conn, frames: make(chan frame, 64)}
	go func() {
		defer close(c.frames)
		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			if cfg.DebugFrames {
				t.Logf("frame: %s %s", f.Event, f.Data)
			}
			c.frames <- f
		}
	}()

	t.Cleanup(func() { _ = conn.Close() })
	return c
}

func (c *wsClient) send(event string, data any) {
	c.t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(frame{Event: event, Data: payload}))
}

// waitFor blocks until a frame with the given event name arrives,
// discarding everything else on the way.
func (c *wsClient) waitFor(event string) frame {
	c.t.Helper()
	deadline := time.After(c.cfg.ReceiveTimeout)
	for {
		select {
		case f, ok := <-c.frames:
			if !ok {
				require.Fail(c.t, "connection closed while waiting", "event=%s", event)
			}
			if f.Event == event {
				return f
			}
		case <-deadline:
			require.Fail(c.t, "Timeout: frame never arrived", "event=%s", event)
			return frame{}
		}
	}
}

func newHubServer(t *testing.T) *httptest.Server {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	stats := observability.NewStats()
	registry := runtime.NewRegistry()
	membership := runtime.NewMembership()
	typing := runtime.NewTypingIndex()
	history := projection.NewHistory(projection.DefaultCapacity)
	router := runtime.NewRouter(registry, membership, history)
	gateway := runtime.NewGateway(log, registry, membership, typing, router, stats, time.Second)

	moderator, err := moderation.NewModerator([]string{"badger"}, '*')
	req.NoError(err)
	gateway.WithModerator(moderator)

	mux := internal.NewAPIRouter(log, registry, router, stats)
	mux.HandleFunc("/ws", ws.Handler(log, gateway, 64))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func Test_Scenario_PresenceAndMessaging(t *testing.T) {
	req := require.New(t)
	cfg, err := LoadConfig()
	req.NoError(err)
	server := newHubServer(t)

	// Given alice joins with a username
	alice := dial(t, cfg, server.URL)
	alice.send("user_join", map[string]string{"username": "alice"})

	var aliceList struct {
		Users []domain.PresenceRecord `json:"users"`
	}
	f := alice.waitFor("user_list")
	req.NoError(json.Unmarshal(f.Data, &aliceList))
	req.Len(aliceList.Users, 1)

	// When bob joins
	bob := dial(t, cfg, server.URL)
	bob.send("user_join", map[string]string{"username": "bob"})
	bob.waitFor("user_list")

	// Then alice sees him arrive
	var joined struct {
		User domain.PresenceRecord `json:"user"`
	}
	f = alice.waitFor("user_joined")
	req.NoError(json.Unmarshal(f.Data, &joined))
	req.Equal("bob", joined.User.Username)

	// When alice sends a global message with a censored word
	alice.send("send_message", map[string]string{"message": "hello badger"})

	// Then bob receives it censored, alice gets her own copy
	var received domain.Message
	f = bob.waitFor("receive_message")
	req.NoError(json.Unmarshal(f.Data, &received))
	req.Equal("alice", received.Sender)
	req.Equal("hello ******", received.Body)
	alice.waitFor("receive_message")

	// And the message is visible through the snapshot API
	resp, err := http.Get(server.URL + "/api/messages")
	req.NoError(err)
	defer resp.Body.Close()

	var messages []domain.Message
	req.NoError(json.NewDecoder(resp.Body).Decode(&messages))
	req.Len(messages, 1)
	req.Equal("hello ******", messages[0].Body)
}

func Test_Scenario_PrivateMessage(t *testing.T) {
	req := require.New(t)
	cfg, err := LoadConfig()
	req.NoError(err)
	server := newHubServer(t)

	alice := dial(t, cfg, server.URL)
	alice.send("user_join", map[string]string{"username": "alice"})
	alice.waitFor("user_list")

	bob := dial(t, cfg, server.URL)
	bob.send("user_join", map[string]string{"username": "bob"})
	bob.waitFor("user_list")

	// Given alice learns bob's connection id from the presence list
	var list struct {
		Users []domain.PresenceRecord `json:"users"`
	}
	f := alice.waitFor("user_list")
	req.NoError(json.Unmarshal(f.Data, &list))
	req.Len(list.Users, 2)
	bobID := list.Users[1].ID

	// Eavesdropper on the same hub
	clara := dial(t, cfg, server.URL)
	clara.send("user_join", map[string]string{"username": "clara"})
	clara.waitFor("user_list")

	// When alice messages bob privately
	alice.send("private_message", map[string]string{
		"to":      string(bobID),
		"message": "psst",
	})

	// Then bob receives it and alice gets the echo with the same id
	var delivered, echoed domain.Message
	f = bob.waitFor("private_message")
	req.NoError(json.Unmarshal(f.Data, &delivered))
	req.Equal("psst", delivered.Body)
	req.True(delivered.Private)

	f = alice.waitFor("private_message")
	req.NoError(json.Unmarshal(f.Data, &echoed))
	req.Equal(delivered.ID, echoed.ID)

	// And the snapshot API never shows it
	resp, err := http.Get(server.URL + "/api/messages")
	req.NoError(err)
	defer resp.Body.Close()

	var messages []domain.Message
	req.NoError(json.NewDecoder(resp.Body).Decode(&messages))
	req.Empty(messages)
}

func Test_Scenario_RoomsAndTyping(t *testing.T) {
	req := require.New(t)
	cfg, err := LoadConfig()
	req.NoError(err)
	server := newHubServer(t)

	alice := dial(t, cfg, server.URL)
	alice.send("user_join", map[string]string{"username": "alice"})
	alice.waitFor("user_list")
	alice.send("join_room", map[string]string{"room": "tech"})

	bob := dial(t, cfg, server.URL)
	bob.send("user_join", map[string]string{"username": "bob"})
	bob.waitFor("user_list")

	// When bob joins the room alice is in
	bob.send("join_room", map[string]string{"room": "tech"})

	// Then alice gets the system notice
	var notice domain.Message
	f := alice.waitFor("receive_message")
	req.NoError(json.Unmarshal(f.Data, &notice))
	req.True(notice.System)
	req.Equal("bob joined the room.", notice.Body)

	// When bob starts typing in the room
	bob.send("typing", map[string]any{"isTyping": true, "room": "tech"})

	// Then alice sees the room's typing list
	var typing struct {
		Room  string   `json:"room"`
		Users []string `json:"users"`
	}
	f = alice.waitFor("typing_users")
	req.NoError(json.Unmarshal(f.Data, &typing))
	req.Equal("tech", typing.Room)
	req.Equal([]string{"bob"}, typing.Users)

	// When bob disconnects mid-typing
	req.NoError(bob.conn.Close())

	// Then alice eventually sees the flag cleared
	f = alice.waitFor("typing_users")
	req.NoError(json.Unmarshal(f.Data, &typing))
	req.Empty(typing.Users)
}

func Test_Scenario_ErrorsGoToOriginOnly(t *testing.T) {
	req := require.New(t)
	cfg, err := LoadConfig()
	req.NoError(err)
	server := newHubServer(t)

	alice := dial(t, cfg, server.URL)
	alice.send("user_join", map[string]string{"username": "alice"})
	alice.waitFor("user_list")

	// When alice sends a whitespace-only message
	alice.send("send_message", map[string]string{"message": "   "})

	// Then she alone receives the taxonomy error
	var rejected struct {
		Code string `json:"code"`
	}
	f := alice.waitFor("error")
	req.NoError(json.Unmarshal(f.Data, &rejected))
	req.Equal("empty_body", rejected.Code)

	// And a room operation before naming is refused too
	anonymous := dial(t, cfg, server.URL)
	anonymous.send("join_room", map[string]string{"room": "tech"})
	f = anonymous.waitFor("error")
	req.NoError(json.Unmarshal(f.Data, &rejected))
	req.Equal("anonymous_connection", rejected.Code)
}
