//go:build unit

package notify

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/internal/core/model"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	go hub.Run()
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcast(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)

	// registration races the publish; give the hub loop a beat
	time.Sleep(50 * time.Millisecond)

	sent := model.LibraryEvent{Type: "favorites", UserID: "u1", BookID: "5", Favorite: true, Timestamp: 1234}
	hub.Publish(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got model.LibraryEvent
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, sent, got)
}

func TestHubFanOut(t *testing.T) {
	hub, srv := newTestHub(t)
	a := dial(t, srv)
	b := dial(t, srv)
	time.Sleep(50 * time.Millisecond)

	hub.Publish(model.LibraryEvent{Type: "progress", UserID: "u1", BookID: "8", Page: 3, Timestamp: 99})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var got model.LibraryEvent
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "progress", got.Type)
		assert.Equal(t, 3, got.Page)
	}
}
