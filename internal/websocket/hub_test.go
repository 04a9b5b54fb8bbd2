package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cipher-chat/internal/auth"
	"cipher-chat/internal/events"
	"cipher-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a client without a connection; only its Send channel
// is exercised by the hub.
func newTestClient(userID string) *Client {
	return &Client{ID: uuid.NewString(), UserID: userID, Send: make(chan []byte, 4)}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, 5*time.Millisecond)
}

func TestHub_BroadcastToUser(t *testing.T) {
	hub := startHub(t)
	a1, a2, b := newTestClient("alice"), newTestClient("alice"), newTestClient("bob")
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b)
	waitFor(t, func() bool { return hub.GetClientCount() == 3 })
	require.Equal(t, 2, hub.GetUserConnectionCount("alice"))

	hub.BroadcastToUser("alice", []byte("hi"))

	require.Equal(t, []byte("hi"), <-a1.Send)
	require.Equal(t, []byte("hi"), <-a2.Send)
	require.Empty(t, b.Send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := newTestClient("alice")
	hub.Register(c)
	waitFor(t, func() bool { return hub.GetClientCount() == 1 })

	hub.Unregister(c)
	hub.Unregister(c)
	waitFor(t, func() bool { return hub.GetClientCount() == 0 })
	require.Equal(t, 0, hub.GetUserConnectionCount("alice"))

	_, ok := <-c.Send
	require.False(t, ok)

	// no panic on a user with no connections
	hub.BroadcastToUser("alice", []byte("late"))
}

func TestHub_RegisterThenUnregisterBeforeRun(t *testing.T) {
	for i := 0; i < 200; i++ {
		hub := NewHub()
		c := newTestClient("u")
		hub.Register(c)
		hub.Unregister(c)

		ctx, cancel := context.WithCancel(context.Background())
		go hub.Run(ctx)

		select {
		case _, ok := <-c.Send:
			require.False(t, ok)
		case <-time.After(time.Second):
			cancel()
			t.Fatalf("iteration %d: send channel never closed", i)
		}
		require.Equal(t, 0, hub.GetUserConnectionCount("u"), "iteration %d", i)
		require.Equal(t, 0, hub.GetClientCount(), "iteration %d", i)
		cancel()
	}
}

func TestHub_SendDropsWhenFull(t *testing.T) {
	c := newTestClient("alice")
	for i := 0; i < cap(c.Send)+2; i++ {
		c.SendMessage([]byte("x"))
	}
	require.Len(t, c.Send, cap(c.Send))
}

func TestRedisBridge_Route(t *testing.T) {
	hub := startHub(t)
	alice, bob := newTestClient("alice"), newTestClient("bob")
	hub.Register(alice)
	hub.Register(bob)
	waitFor(t, func() bool { return hub.GetClientCount() == 2 })

	bridge := NewRedisBridge(nil, hub)

	bridge.Route(events.UserChannel("bob"), []byte("direct"))
	require.Equal(t, []byte("direct"), <-bob.Send)
	require.Empty(t, alice.Send)

	bridge.Route(events.ChannelBroadcast, []byte("all"))
	require.Equal(t, []byte("all"), <-alice.Send)
	require.Equal(t, []byte("all"), <-bob.Send)

	bridge.Route("channel:unknown", []byte("ignored"))
	require.Empty(t, alice.Send)
	require.Empty(t, bob.Send)
}

type recordingPresence struct {
	connected    chan string
	disconnected chan string
}

func (p *recordingPresence) Connect(_ context.Context, userID, _ string) error {
	p.connected <- userID
	return nil
}

func (p *recordingPresence) Disconnect(_ context.Context, userID, _ string) error {
	p.disconnected <- userID
	return nil
}

func (p *recordingPresence) Heartbeat(context.Context, string) error { return nil }

func TestHandler_Connect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)
	verifier := auth.NewTokenVerifier("test-secret")
	presence := &recordingPresence{connected: make(chan string, 1), disconnected: make(chan string, 1)}
	handler := NewHandler(verifier, hub, presence, "jwt", logger.NewNop())

	router := gin.New()
	router.GET("/ws", handler.Connect)
	srv := httptest.NewServer(router)
	defer srv.Close()

	t.Run("missing token", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/ws")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/ws?token=garbage")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("delivers user events", func(t *testing.T) {
		userID := uuid.New()
		token, err := verifier.Issue(userID, time.Minute)
		require.NoError(t, err)

		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)

		require.Equal(t, userID.String(), <-presence.connected)
		waitFor(t, func() bool { return hub.GetUserConnectionCount(userID.String()) == 1 })

		hub.BroadcastToUser(userID.String(), []byte(`{"event_type":"newMessage"}`))
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		require.JSONEq(t, `{"event_type":"newMessage"}`, string(data))

		require.NoError(t, conn.Close())
		select {
		case id := <-presence.disconnected:
			require.Equal(t, userID.String(), id)
		case <-time.After(2 * time.Second):
			t.Fatal("disconnect not recorded")
		}
		waitFor(t, func() bool { return hub.GetUserConnectionCount(userID.String()) == 0 })
	})
}
