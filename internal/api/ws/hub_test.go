package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/pkg/config"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

func testHub() *Hub {
	return NewHub(logger.New(&config.Config{LogLevel: "error", LogFormat: "json"}))
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastsScans(t *testing.T) {
	hub := testHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	waitForClients(t, hub, 1)

	score := 1.5
	hub.NotifyScan(&contracts.ScanResult{
		ScanTime:    time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC),
		Sentiment:   contracts.SentimentRiskOn,
		AvgMomentum: &score,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, "scan", event.Type)
	require.NotNil(t, event.Scan)
	assert.Equal(t, contracts.SentimentRiskOn, event.Scan.Sentiment)
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := testHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)

	// broadcasting into an empty hub is a no-op
	hub.NotifyScan(&contracts.ScanResult{Sentiment: contracts.SentimentNeutral})
}

func TestHubBroadcastRacesDisconnect(t *testing.T) {
	hub := testHub()
	result := &contracts.ScanResult{Sentiment: contracts.SentimentNeutral}

	// a disconnect landing mid-broadcast must never send on the
	// closed channel
	for i := 0; i < 1000; i++ {
		c := &client{send: make(chan *Event, sendBuffer)}
		hub.mu.Lock()
		hub.clients[c] = struct{}{}
		hub.mu.Unlock()

		done := make(chan struct{})
		go func() {
			hub.remove(c)
			close(done)
		}()
		hub.NotifyScan(result)
		<-done
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubReachesMultipleClients(t *testing.T) {
	hub := testHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	first := dial(t, srv)
	defer first.Close()
	second := dial(t, srv)
	defer second.Close()
	waitForClients(t, hub, 2)

	hub.NotifyScan(&contracts.ScanResult{Sentiment: contracts.SentimentRiskOff})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, contracts.SentimentRiskOff, event.Scan.Sentiment)
	}
}
