package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffaviron/defirose-api/internal/handler/dto"
)

func startFeed(t *testing.T) (*Hub, string, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn)
		_ = client.Enqueue(Message{Type: STATS_UPDATE, Data: dto.CampaignStats{TotalParticipants: 1}})
		client.Start(r.Context())
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http"), cancel
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type statsEnvelope struct {
	Type string            `json:"type"`
	Data dto.CampaignStats `json:"data"`
}

func readStats(t *testing.T, conn *websocket.Conn) statsEnvelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var env statsEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func TestHub_InitialSnapshotThenBroadcast(t *testing.T) {
	hub, url, _ := startFeed(t)
	first := dial(t, url)
	second := dial(t, url)

	assert.Equal(t, int64(1), readStats(t, first).Data.TotalParticipants)
	assert.Equal(t, int64(1), readStats(t, second).Data.TotalParticipants)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.PublishStats(context.Background(), &dto.CampaignStats{TotalParticipants: 7, TotalKilometers: 42.5, TotalClubs: 3})

	for _, conn := range []*websocket.Conn{first, second} {
		env := readStats(t, conn)
		assert.Equal(t, STATS_UPDATE, env.Type)
		assert.Equal(t, int64(7), env.Data.TotalParticipants)
		assert.InDelta(t, 42.5, env.Data.TotalKilometers, 0.0001)
		assert.Equal(t, int64(3), env.Data.TotalClubs)
	}
}

func TestHub_UnregistersClosedClient(t *testing.T) {
	hub, url, _ := startFeed(t)
	conn := dial(t, url)
	readStats(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, url, cancel := startFeed(t)
	conn := dial(t, url)
	readStats(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseNormalClosure) ||
		strings.Contains(err.Error(), "close"), "unexpected error: %v", err)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_PublishNilIsIgnored(t *testing.T) {
	hub := NewHub()
	hub.PublishStats(context.Background(), nil)
	assert.Len(t, hub.broadcast, 0)
}

func TestClient_EnqueueReportsFullBuffer(t *testing.T) {
	c := NewClient(NewHub(), nil)
	for i := 0; i < defaultClientBufferSize; i++ {
		require.NoError(t, c.Enqueue(Message{Type: STATS_UPDATE}))
	}
	assert.ErrorIs(t, c.Enqueue(Message{Type: STATS_UPDATE}), ErrBufferFull)
}
