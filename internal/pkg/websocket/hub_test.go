package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, userID int64) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	handler := NewHandler(hub, func(*gin.Context) int64 { return userID }, zerolog.Nop())
	r := gin.New()
	r.GET("/ws", handler.HandleConnection)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func TestHub_PushReachesUser(t *testing.T) {
	hub, srv := newTestServer(t, 42)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount(42) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Push(7, "notification", map[string]string{"title": "not for you"})
	hub.Push(42, "notification", map[string]string{"title": "Request approved"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, "notification", ev.Type)
	assert.Equal(t, "Request approved", ev.Payload["title"])
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub, srv := newTestServer(t, 5)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount(5) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount(5) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_RejectsMissingProfile(t *testing.T) {
	_, srv := newTestServer(t, 0)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHub_PushWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Push(1, "notification", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Push blocked without a running hub")
	}
}
